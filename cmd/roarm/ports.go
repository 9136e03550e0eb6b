package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/roarm-dev/roarm/pkg/transport"
)

type PortsCommand struct{}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		return nil
	}

	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableUSBStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)

	usb := 0
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		p := ports[name]
		kind := "native"
		id := ""
		if p.IsUSB {
			kind = "usb"
			usb++
			id = fmt.Sprintf("%s:%s", p.VID, p.PID)
		}
		rows = append(rows, []string{name, kind, id, p.SerialNumber, p.Product})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Type", "VID:PID", "Serial", "Product").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if row >= 0 && row < len(rows) && rows[row][1] == "usb" {
				return tableUSBStyle
			}
			return tableCellStyle
		})

	fmt.Println(t.Render())
	if usb > 0 {
		fmt.Println(successStyle.Render(fmt.Sprintf("%d USB serial port(s); the arm is usually one of these.", usb)))
	}
	fmt.Println(dimStyle.Render("Try: roarm --port <port> status"))
	return nil
}
