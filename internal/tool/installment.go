package tool

import (
	"context"
	"fmt"
	"time"
)

const (
	InstallmentToolName = "calculate_installment"

	minInstallmentMonths = 3
	maxInstallmentMonths = 48
)

// InstallmentArgs are the arguments of calculate_installment.
type InstallmentArgs struct {
	Price  float64
	Months int
}

// Validate checks price and month bounds.
func (a InstallmentArgs) Validate() error {
	if a.Price <= 0 {
		return fmt.Errorf("price must be greater than 0, got %.2f", a.Price)
	}
	if a.Months < minInstallmentMonths || a.Months > maxInstallmentMonths {
		return fmt.Errorf("months must be between %d and %d, got %d", minInstallmentMonths, maxInstallmentMonths, a.Months)
	}
	return nil
}

// InstallmentTool computes an equal monthly installment.
type InstallmentTool struct{}

// NewInstallmentTool creates the installment calculator.
func NewInstallmentTool() *InstallmentTool {
	return &InstallmentTool{}
}

func (*InstallmentTool) Name() string { return InstallmentToolName }

func (*InstallmentTool) Signature() string {
	return "calculate_installment(price: float, months: int)"
}

func (*InstallmentTool) Description() string {
	return "Użyj do obliczeń ratalnych."
}

func (*InstallmentTool) Timeout() time.Duration { return time.Second }

func (*InstallmentTool) Decode(raw map[string]any) (Args, error) {
	price, err := floatArg(raw, "price")
	if err != nil {
		return nil, err
	}
	months, err := intArg(raw, "months")
	if err != nil {
		return nil, err
	}
	return InstallmentArgs{Price: price, Months: months}, nil
}

func (*InstallmentTool) Execute(_ context.Context, args Args) (string, error) {
	a, ok := args.(InstallmentArgs)
	if !ok {
		return "", fmt.Errorf("unexpected arguments %T", args)
	}
	monthly := a.Price / float64(a.Months)
	return fmt.Sprintf("Symulacja raty dla kwoty %.2f zł: **%.2f zł** miesięcznie (%d rat).", a.Price, monthly, a.Months), nil
}
