package payload

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	payloadpkg "github.com/mlowther/vidgrab/pkg/payload"
)

// PayloadAction prints (or writes) the console JavaScript for the manual
// browser step.
func PayloadAction(c *cli.Context) error {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	if c.Bool("write") {
		path, err := payloadpkg.WriteCombined(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		fmt.Printf("Paste its contents into the DevTools console on %s\n", cfg.LibraryURL)
		return nil
	}

	switch c.String("stage") {
	case "1", "courses":
		fmt.Println(payloadpkg.Stage1(cfg))
	case "2", "videos":
		fmt.Println(payloadpkg.Stage2(cfg))
	case "", "all":
		fmt.Println(payloadpkg.Combined(cfg))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown stage %q (use 1, 2, or all)\n", c.String("stage"))
		os.Exit(1)
	}
	return nil
}
