package main

import (
	"github.com/spf13/cobra"

	"github.com/onurmatik/StageOps/internal/core/plan"
	"github.com/onurmatik/StageOps/internal/shell/templates"
)

var planCmd = &cobra.Command{
	Use:   "plan [projects...]",
	Short: "Print the deployment plan without applying it",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, projects, err := loadManifest(cfg.Manifest)
		if err != nil {
			return err
		}

		p, err := plan.Build(projects, templates.Default(), args)
		if err != nil {
			return err
		}

		printPlan(p)
		return nil
	},
}
