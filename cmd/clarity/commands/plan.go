package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SelJom/ClarityAI/internal/domain"
)

var goalArea string

// NewPlanCmd creates the plan command group.
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage focus areas, micro goals and reminders",
		Long: `Manage the plan: up to two focus areas, up to three micro goals and a
check-in reminder.

Focus areas: ` + focusAreaList() + `

Examples:
  clarity plan show
  clarity plan focus "Better sleep"
  clarity plan goal add "No screens after 10pm" --area "Better sleep"
  clarity plan reminder daily`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the plan",
			Args:  cobra.NoArgs,
			RunE:  runPlanShow,
		},
		&cobra.Command{
			Use:   "focus <area>",
			Short: "Toggle a focus area",
			Args:  cobra.ExactArgs(1),
			RunE:  runPlanFocus,
		},
		&cobra.Command{
			Use:   "reminder <off|daily|weekly>",
			Short: "Set the check-in reminder",
			Args:  cobra.ExactArgs(1),
			RunE:  runPlanReminder,
		},
		&cobra.Command{
			Use:   "toggle <activity>",
			Short: "Toggle a plan activity",
			Args:  cobra.ExactArgs(1),
			RunE:  runPlanToggle,
		},
		newGoalCmd(),
	)
	return cmd
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage micro goals",
	}

	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a micro goal",
		Args:  cobra.ExactArgs(1),
		RunE:  runGoalAdd,
	}
	add.Flags().StringVar(&goalArea, "area", "", "Focus area the goal belongs to")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "done <id>",
			Short: "Toggle a micro goal's done flag",
			Args:  cobra.ExactArgs(1),
			RunE:  runGoalDone,
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a micro goal",
			Args:  cobra.ExactArgs(1),
			RunE:  runGoalRemove,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every micro goal",
			Args:  cobra.NoArgs,
			RunE:  runGoalClear,
		},
	)
	return cmd
}

func focusAreaList() string {
	names := make([]string, len(domain.FocusAreas))
	for i, a := range domain.FocusAreas {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func runPlanShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return printPlan(cmd, a.stores.Plan.Get())
}

func printPlan(cmd *cobra.Command, p domain.PlanState) error {
	if outputFormat == "json" {
		return printJSON(cmd, p)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	focus := make([]string, len(p.Focus))
	for i, f := range p.Focus {
		focus[i] = string(f)
	}
	fmt.Fprintf(w, "Focus\t%s\n", strings.Join(focus, ", "))
	fmt.Fprintf(w, "Reminder\t%s\n", p.Reminder)
	for _, g := range p.Goals {
		mark := " "
		if g.Done {
			mark = "x"
		}
		fmt.Fprintf(w, "Goal\t[%s] %s\t%s\t%s\n", mark, g.Text, g.Area, g.ID)
	}
	return w.Flush()
}

func runPlanFocus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.sync.SetFocus(domain.FocusArea(args[0]))
	if err != nil {
		return fmt.Errorf("setting focus: %w (known areas: %s)", err, focusAreaList())
	}
	return printPlan(cmd, p)
}

func runPlanReminder(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.sync.SetReminder(domain.Reminder(args[0]))
	if err != nil {
		return fmt.Errorf("setting reminder: %w", err)
	}
	info(cmd, "✓ Reminder set to %s", p.Reminder)
	return nil
}

func runPlanToggle(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.stores.Plan.Toggle(args[0])
	info(cmd, "✓ %s chosen: %t", args[0], p.Chosen[args[0]])
	return nil
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	goal, ok := a.stores.Plan.AddGoal(args[0], domain.FocusArea(goalArea))
	if !ok {
		return fmt.Errorf("goal rejected: at most %d goals, text must not be empty, area must be known", domain.MaxMicroGoals)
	}
	if outputFormat == "json" {
		return printJSON(cmd, goal)
	}
	info(cmd, "✓ Added goal %s", goal.ID)
	return nil
}

func runGoalDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.stores.Plan.ToggleGoal(args[0]) {
		return fmt.Errorf("goal %s not found", args[0])
	}
	info(cmd, "✓ Toggled goal %s", args[0])
	return nil
}

func runGoalRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.stores.Plan.RemoveGoal(args[0]) {
		return fmt.Errorf("goal %s not found", args[0])
	}
	info(cmd, "✓ Removed goal %s", args[0])
	return nil
}

func runGoalClear(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	a.stores.Plan.ClearGoals()
	info(cmd, "✓ Goals cleared")
	return nil
}
