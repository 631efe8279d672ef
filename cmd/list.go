package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dropoutwatch/internal/riskapi"
)

var (
	courseFilter string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "List students known to the backend",
	Long: `List the students the backend knows about, optionally filtered by a
case-insensitive match on roll number or name. Results are returned as JSON.

Examples:
  dropoutwatch list
  dropoutwatch list kiran
  dropoutwatch list --course CSE --limit 10`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		students, err := ListStudents(context.Background(), s, query, courseFilter, listLimit)
		if err != nil {
			HandleError(err, "Failed to list students")
		}
		if len(students) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No students matched")
		}

		printJSON(students)
	},
}

// ListStudents fetches the backend list and applies the filters. A
// non-positive limit returns every match.
func ListStudents(ctx context.Context, s *Settings, query, course string, limit int) ([]riskapi.StudentSummary, error) {
	all, err := s.Client.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return filterStudents(all, query, course, limit), nil
}

func filterStudents(all []riskapi.StudentSummary, query, course string, limit int) []riskapi.StudentSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	course = strings.ToLower(strings.TrimSpace(course))

	matched := []riskapi.StudentSummary{}
	for _, st := range all {
		if query != "" &&
			!strings.Contains(strings.ToLower(st.RollNo), query) &&
			!strings.Contains(strings.ToLower(st.Name), query) {
			continue
		}
		if course != "" && !strings.Contains(strings.ToLower(st.Course), course) {
			continue
		}
		matched = append(matched, st)
		if limit > 0 && len(matched) >= limit {
			break
		}
	}
	return matched
}

func init() {
	listCmd.Flags().StringVarP(&courseFilter, "course", "c", "", "Filter by course (e.g., CSE)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 100, "Maximum number of results")
	rootCmd.AddCommand(listCmd)
}
