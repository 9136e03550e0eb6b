package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/roarm-dev/roarm/pkg/robot"
)

// RobotsCommand lists the robot profiles from the config.
type RobotsCommand struct{}

func (c *RobotsCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Robots) == 0 {
		fmt.Println("No robot profiles configured.")
		fmt.Println(dimStyle.Render("Add a [[robots]] block to roarm.toml, or pass --port directly."))
		return nil
	}

	reg := robot.NewRegistry()
	defer reg.CloseAll()
	for _, rc := range cfg.Robots {
		model, err := robot.ParseModel(rc.Model)
		if err != nil {
			return fmt.Errorf("profile %q: %w", rc.Name, err)
		}
		ctrl := robot.NewController(robot.Config{
			Name:  rc.Name,
			Port:  rc.Port,
			Model: model,
		})
		if err := reg.Register(rc.Name, ctrl); err != nil {
			ctrl.Close()
			return err
		}
	}

	def, _ := cfg.Robot("")

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableNameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	names := reg.Names()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		ctrl, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		mark := ""
		if name == def.Name {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			name,
			ctrl.Port(),
			string(ctrl.Model()),
			fmt.Sprintf("%d", ctrl.Model().JointCount()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("", "Name", "Port", "Model", "Joints").
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
	fmt.Println(dimStyle.Render("* default profile; select another with --robot <name>"))
	return nil
}
