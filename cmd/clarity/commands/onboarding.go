package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SelJom/ClarityAI/internal/domain"
)

var (
	onboardingName     string
	onboardingNickname string
)

var stepNames = []string{"identity", "experience", "goals", "inner world", "space", "review"}

// NewOnboardingCmd creates the onboarding command group.
func NewOnboardingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Walk the onboarding wizard",
		Long: `Inspect and move through the onboarding wizard.

Examples:
  clarity onboarding show
  clarity onboarding name --name Ada --nickname A
  clarity onboarding step 5
  clarity onboarding next`,
	}

	name := &cobra.Command{
		Use:   "name",
		Short: "Set the identity answers",
		Args:  cobra.NoArgs,
		RunE:  runOnboardingName,
	}
	name.Flags().StringVar(&onboardingName, "name", "", "Name")
	name.Flags().StringVar(&onboardingNickname, "nickname", "", "Nickname")

	cmd.AddCommand(
		&cobra.Command{Use: "show", Short: "Show the onboarding record", Args: cobra.NoArgs, RunE: runOnboardingShow},
		name,
		&cobra.Command{Use: "step <n>", Short: "Jump to a step (0-5)", Args: cobra.ExactArgs(1), RunE: runOnboardingStep},
		&cobra.Command{Use: "next", Short: "Advance one step, completing from review", Args: cobra.NoArgs, RunE: runOnboardingNext},
		&cobra.Command{Use: "back", Short: "Go back one step", Args: cobra.NoArgs, RunE: runOnboardingBack},
		&cobra.Command{Use: "complete", Short: "Complete the wizard from the review step", Args: cobra.NoArgs, RunE: runOnboardingComplete},
		&cobra.Command{Use: "reset", Short: "Start over", Args: cobra.NoArgs, RunE: runOnboardingReset},
	)
	return cmd
}

func printOnboarding(cmd *cobra.Command, o domain.OnboardingState) error {
	if outputFormat == "json" {
		return printJSON(cmd, o)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Step:      %d (%s)\n", o.Step, stepNames[o.Step])
	fmt.Fprintf(out, "Completed: %t\n", o.Completed)
	if n := o.Identity.DisplayName(); n != "" {
		fmt.Fprintf(out, "Name:      %s\n", n)
	}
	return nil
}

func runOnboardingShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return printOnboarding(cmd, a.stores.Onboarding.Get())
}

func runOnboardingName(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ident := a.stores.Onboarding.Get().Identity
	if cmd.Flags().Changed("name") {
		ident.Name = onboardingName
	}
	if cmd.Flags().Changed("nickname") {
		ident.Nickname = onboardingNickname
	}
	return printOnboarding(cmd, a.sync.UpdateOnboarding(domain.OnboardingPatch{Identity: &ident}))
}

func runOnboardingStep(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("step must be a number, got %q", args[0])
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.stores.Onboarding.SetStep(n)
	if err != nil {
		return fmt.Errorf("setting step: %w", err)
	}
	return printOnboarding(cmd, o)
}

func runOnboardingNext(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return printOnboarding(cmd, a.sync.NextOnboarding())
}

func runOnboardingBack(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return printOnboarding(cmd, a.stores.Onboarding.Back())
}

func runOnboardingComplete(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.sync.CompleteOnboarding()
	if err != nil {
		return fmt.Errorf("completing onboarding: %w", err)
	}
	return printOnboarding(cmd, o)
}

func runOnboardingReset(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return printOnboarding(cmd, a.stores.Onboarding.Reset())
}
