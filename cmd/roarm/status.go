package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/roarm-dev/roarm/pkg/robot"
)

type StatusCommand struct{}

func (c *StatusCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	// A pose query also refreshes the cached state.
	pos, err := ctrl.GetPosition(ctx)
	if err != nil {
		return err
	}
	joints, err := ctrl.GetJoints(ctx)
	if err != nil {
		return err
	}
	st, err := ctrl.State(ctx)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%s) on %s", st.Name, st.Model, st.Port)))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Printf("  Connected: %s\n", onOff(st.Connected))
	fmt.Printf("  Torque:    %s\n", onOff(st.Torque))
	fmt.Println()

	fmt.Println(headerStyle.Render("End effector"))
	fmt.Printf("  x %.1f mm   y %.1f mm   z %.1f mm   tilt %.1f\n", pos.X, pos.Y, pos.Z, pos.T)
	fmt.Println()

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableNameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	names := st.Model.JointNames()
	degs := joints.Slice(st.Model.JointCount())
	rows := make([][]string, 0, len(names))
	for i, name := range names {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			string(name),
			fmt.Sprintf("%.1f", degs[i]),
			fmt.Sprintf("%.3f", robot.Radians(degs[i])),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Joint", "Degrees", "Radians").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 1 {
				return tableNameStyle
			}
			return tableCellStyle
		})
	fmt.Println(t.Render())

	return nil
}

func onOff(b bool) string {
	if b {
		return successStyle.Render("yes")
	}
	return errorStyle.Render("no")
}
