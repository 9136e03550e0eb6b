package main

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
)

type RawCommand struct {
	NoReply bool `long:"no-reply" description:"Fire and forget, do not wait for a reply line"`
	Args    struct {
		Line string `positional-arg-name:"json" required:"true" description:"Command line, e.g. '{\"T\":105}'"`
	} `positional-args:"true"`
}

// Execute sends one line as-is, for firmware commands the validator
// does not know. The line must at least be JSON.
func (c *RawCommand) Execute(args []string) error {
	var probe map[string]any
	if err := json.Unmarshal([]byte(c.Args.Line), &probe); err != nil {
		return fmt.Errorf("not a JSON object: %w", err)
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	reply, err := ctrl.Raw(ctx, []byte(c.Args.Line), !c.NoReply)
	if err != nil {
		return err
	}
	if c.NoReply {
		fmt.Println("Sent.")
		return nil
	}
	fmt.Println(string(reply))
	return nil
}
