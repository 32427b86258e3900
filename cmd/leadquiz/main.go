// Command leadquiz runs the lead capture quiz bot.
package main

import (
	"log"

	"github.com/m3rciful/leadquiz/app"
	"github.com/m3rciful/leadquiz/core/buildinfo"
	corecmd "github.com/m3rciful/leadquiz/core/cmd"
)

func main() {
	log.Printf("leadquiz %s", buildinfo.String())

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		DotEnvFiles:       []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("leadquiz: %v", err)
	}
}
