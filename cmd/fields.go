package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dropoutwatch/internal/normalize"
)

// FieldOutput describes one row of a normalizer field table
type FieldOutput struct {
	Canonical string      `json:"canonical"`
	Keys      []string    `json:"keys"`
	Default   interface{} `json:"default"`
}

// SchemaOutput represents the schema information for a table
type SchemaOutput struct {
	TableName   string       `json:"table_name"`
	ColumnCount int          `json:"column_count"`
	Columns     []ColumnInfo `json:"columns"`
}

// ColumnInfo represents information about a single column
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show the record field tables and the cohort table schema",
	Long: `Show how backend records are read: for every canonical field, the keys that
are tried in order and the default used when none holds a value. Also lists
the columns of the in-memory cohort table that "cohort --sql" queries.

Examples:
  dropoutwatch fields`,
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()

		out := struct {
			Student    []FieldOutput  `json:"student"`
			Prediction []FieldOutput  `json:"prediction"`
			Tables     []SchemaOutput `json:"tables"`
		}{
			Student:    fieldOutputs(normalize.StudentFields),
			Prediction: fieldOutputs(normalize.PredictionFields),
		}

		cohort, cleanup, err := InitCohort(s)
		if err != nil {
			HandleError(err, "Failed to initialize cohort store")
		}
		defer cleanup()

		for _, tableName := range []string{"cohort"} {
			schema, err := getTableSchema(cohort, tableName)
			if err != nil {
				HandleError(err, "Failed to read table schema")
			}
			out.Tables = append(out.Tables, schema)
		}

		printJSON(out)
	},
}

func fieldOutputs(fields []normalize.Field) []FieldOutput {
	out := make([]FieldOutput, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldOutput{Canonical: f.Canonical, Keys: f.Chain, Default: f.Default})
	}
	return out
}

// getTableSchema retrieves schema information for a specific table
func getTableSchema(cohort CohortInterface, tableName string) (SchemaOutput, error) {
	query := fmt.Sprintf("PRAGMA table_info('%s')", tableName)
	rows, err := cohort.ExecuteQuery(query)
	if err != nil {
		return SchemaOutput{}, fmt.Errorf("failed to get schema for table %s: %w", tableName, err)
	}

	schema := SchemaOutput{
		TableName: tableName,
		Columns:   []ColumnInfo{},
	}

	for _, row := range rows {
		// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
		name, _ := row["name"].(string)
		colType, _ := row["type"].(string)

		nullable := "YES"
		if notnull, ok := row["notnull"].(bool); ok && notnull {
			nullable = "NO"
		}

		schema.Columns = append(schema.Columns, ColumnInfo{
			Name:     name,
			Type:     colType,
			Nullable: nullable,
		})
	}

	schema.ColumnCount = len(schema.Columns)

	return schema, nil
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
