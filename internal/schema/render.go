package schema

import (
	"fmt"
	"strings"
)

// Render produces a DDL-like create script from the model. Output is
// byte-identical across calls on an equal model: schemas are sorted by name,
// tables by name, columns stay in declaration order. The default schema is
// omitted from foreign key references.
func Render(m Model) string {
	var script strings.Builder

	for _, schemaName := range sortedKeys(m.Schemas) {
		s := m.Schemas[schemaName]

		script.WriteString(fmt.Sprintf("\nCREATE SCHEMA IF NOT EXISTS \"%s\";\n", schemaName))

		for _, tableName := range sortedKeys(s.Tables) {
			t := s.Tables[tableName]

			script.WriteString(fmt.Sprintf("\nCREATE TABLE IF NOT EXISTS %s.%s\n(", schemaName, tableName))

			primaryKeys := t.primaryKeys()

			for _, column := range t.Columns {
				script.WriteString(fmt.Sprintf("\n\t%s %s", column.Name, strings.ToUpper(column.DataType)))
				if len(primaryKeys) == 1 && column.PrimaryKey {
					script.WriteString(" PRIMARY KEY,")
				}
				if column.ForeignKey != nil {
					script.WriteString(referencingString(*column.ForeignKey, m.DefaultSchema))
				}
			}

			if len(primaryKeys) > 1 {
				script.WriteString("\n\tPRIMARY KEY (" + strings.Join(primaryKeys, ", ") + ")\n);\n")
			} else {
				script.WriteString("\n);\n")
			}
		}
	}

	return strings.TrimSpace(script.String())
}

func (t Table) primaryKeys() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

func referencingString(fk ForeignKey, defaultSchema string) string {
	prefix := ""
	if fk.ReferencedSchema != defaultSchema {
		prefix = fk.ReferencedSchema + "."
	}
	return " REFERENCES " + prefix + fk.ReferencedTable + "(" + fk.ReferencedColumn + "),"
}
