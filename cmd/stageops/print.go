package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/onurmatik/StageOps/internal/core/plan"
	"github.com/onurmatik/StageOps/internal/shell/executor"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// printPlan renders a plan as indented human-readable steps.
func printPlan(p plan.Plan) {
	if p.Empty() {
		fmt.Println("Nothing to do.")
		return
	}

	for _, group := range p.Groups {
		fmt.Printf("%s\n", bold(group.Project))
		if group.Err != nil {
			fmt.Printf("  %s %v\n", red("plan failed:"), group.Err)
			continue
		}
		for _, step := range group.Steps {
			fmt.Printf("  %-13s %s\n", step.Op, step.Target())
		}
	}

	if len(p.Shared) > 0 {
		fmt.Printf("%s\n", bold("shared"))
		for _, step := range p.Shared {
			fmt.Printf("  %s\n", step.Op)
		}
	}

	fmt.Printf("\n%s\n", faint(fmt.Sprintf("%d steps across %d projects", p.StepCount(), len(p.Groups))))
}

// printReport renders per-project outcomes and a summary line.
func printReport(report executor.Report) {
	for _, res := range report.Results {
		switch res.Status {
		case executor.StatusSucceeded:
			fmt.Printf("%s %s\n", green("✓"), res.Project)
		case executor.StatusFailed:
			fmt.Printf("%s %s: %s failed: %s\n", red("✗"), res.Project, res.FailedOp, res.Reason)
		case executor.StatusSkipped:
			fmt.Printf("%s %s: %s\n", yellow("-"), res.Project, res.Reason)
		}
	}

	succeeded, failed, skipped := report.Counts()
	fmt.Printf("\n%d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)

	if report.Success {
		fmt.Println(green("Run succeeded."))
	} else {
		fmt.Println(red("Run failed."))
	}
}
