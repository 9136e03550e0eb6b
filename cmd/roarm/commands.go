package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/roarm-dev/roarm/pkg/command"
)

type CommandsCommand struct {
	Category string `long:"category" description:"Only show one category (movement, system, led, pid, adapt, mission, gripper)"`
}

func (c *CommandsCommand) Execute(args []string) error {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableCodeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	var rows [][]string
	for _, s := range command.Schemas() {
		if c.Category != "" && string(s.Category) != strings.ToLower(c.Category) {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Type),
			s.Name,
			string(s.Category),
			formatParams(s.Params),
		})
	}
	if len(rows) == 0 {
		return fmt.Errorf("no commands in category %q", c.Category)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("T", "Name", "Category", "Parameters").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return tableCodeStyle
			}
			return tableCellStyle
		})

	fmt.Println(t.Render())
	fmt.Println(dimStyle.Render("* required   =v default   symbolic Min/Mid/Max accepted for ranged parameters"))
	return nil
}

func formatParams(params []command.Param) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		var b strings.Builder
		b.WriteString(p.Name)
		if p.Spec.Required {
			b.WriteString("*")
		}
		if p.Spec.Min != nil && p.Spec.Max != nil {
			fmt.Fprintf(&b, " %s..%s", trimFloat(*p.Spec.Min), trimFloat(*p.Spec.Max))
		}
		if p.Spec.Default != nil {
			if s, ok := p.Spec.Default.(string); ok {
				fmt.Fprintf(&b, " =%q", s)
			} else {
				fmt.Fprintf(&b, " =%v", p.Spec.Default)
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ", ")
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
