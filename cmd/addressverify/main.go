package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"addrpool/internal/adapters/outbound/wallet/hdwallet"
	valueobjects "addrpool/internal/domain/value_objects"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	exitMatch    = 0
	exitError    = 2
	exitMismatch = 3

	maxDeriveCount = 1000
)

var (
	xpubFlag = &cli.StringFlag{
		Name:     "xpub",
		Usage:    "account-level extended public key (xpub/ypub/zpub)",
		Required: true,
	}
	pathFlag = &cli.StringFlag{
		Name:     "path",
		Usage:    "account derivation path, e.g. m/84'/0'/0'",
		Required: true,
	}
	strictFlag = &cli.BoolFlag{
		Name:  "strict",
		Usage: "reject derivation paths whose purpose has no known address standard",
	}
)

type derivedAddress struct {
	Index   uint32 `json:"index"`
	Address string `json:"address"`
}

type deriveResult struct {
	AddressStandard string           `json:"address_standard"`
	DerivationPath  string           `json:"derivation_path"`
	Addresses       []derivedAddress `json:"addresses"`
}

type verifyResult struct {
	Match           bool   `json:"match"`
	AddressStandard string `json:"address_standard,omitempty"`
	DerivationPath  string `json:"derivation_path,omitempty"`
	DerivationIndex uint64 `json:"derivation_index"`
	ExpectedAddress string `json:"expected_address"`
	DerivedAddress  string `json:"derived_address"`
	Reason          string `json:"reason,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
}

type errorResult struct {
	Reason    string         `json:"reason"`
	ErrorCode string         `json:"error_code"`
	Details   map[string]any `json:"details,omitempty"`
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(args)
	if err == nil {
		return exitMatch
	}

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintln(stderr, err)
	return exitError
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "addressverify"
	app.Usage = "derive receive addresses from an account xpub and check them against expectations"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = []*cli.Command{
		{
			Name:  "derive",
			Usage: "print receive addresses for a range of indexes",
			Flags: []cli.Flag{
				xpubFlag,
				pathFlag,
				strictFlag,
				&cli.Uint64Flag{Name: "start", Usage: "first derivation index"},
				&cli.Uint64Flag{Name: "count", Usage: "number of addresses", Value: 5},
			},
			Action: deriveAction,
		},
		{
			Name:  "verify",
			Usage: "check that one derivation index yields the expected address",
			Flags: []cli.Flag{
				xpubFlag,
				pathFlag,
				strictFlag,
				&cli.Uint64Flag{Name: "index", Usage: "derivation index to check"},
				&cli.StringFlag{Name: "expected-address", Usage: "address the index must produce", Required: true},
			},
			Action: verifyAction,
		},
	}

	return app
}

func deriveAction(ctx *cli.Context) error {
	wallet, gateway, appErr := loadWallet(ctx)
	if appErr != nil {
		return failWith(ctx, appErr)
	}

	start := ctx.Uint64("start")
	count := ctx.Uint64("count")
	if count == 0 || count > maxDeriveCount {
		return failWith(ctx, apperrors.NewValidation(
			"invalid_input",
			fmt.Sprintf("count must be between 1 and %d", maxDeriveCount),
			map[string]any{"count": count},
		))
	}
	first, appErr := derivationIndex(start)
	if appErr != nil {
		return failWith(ctx, appErr)
	}
	// start fits in 32 bits and count is bounded, so the sum cannot wrap.
	if _, appErr := derivationIndex(start + count - 1); appErr != nil {
		return failWith(ctx, appErr)
	}

	result := deriveResult{
		AddressStandard: wallet.AddressStandard.String(),
		DerivationPath:  wallet.DerivationPath.String(),
		Addresses:       make([]derivedAddress, 0, count),
	}
	for offset := uint32(0); uint64(offset) < count; offset++ {
		index := first + offset
		address, appErr := gateway.DeriveAddress(ctx.Context, wallet, index)
		if appErr != nil {
			return failWith(ctx, appErr)
		}
		result.Addresses = append(result.Addresses, derivedAddress{Index: index, Address: address})
	}

	return printJSON(ctx.App.Writer, result)
}

func verifyAction(ctx *cli.Context) error {
	requested := ctx.Uint64("index")
	expected := strings.TrimSpace(ctx.String("expected-address"))
	result := verifyResult{
		DerivationIndex: requested,
		ExpectedAddress: expected,
	}

	index, appErr := derivationIndex(requested)
	if appErr != nil {
		return verifyFailure(ctx, result, appErr)
	}

	wallet, gateway, appErr := loadWallet(ctx)
	if appErr != nil {
		return verifyFailure(ctx, result, appErr)
	}
	result.AddressStandard = wallet.AddressStandard.String()
	result.DerivationPath = wallet.DerivationPath.String()

	derived, appErr := gateway.DeriveAddress(ctx.Context, wallet, index)
	if appErr != nil {
		return verifyFailure(ctx, result, appErr)
	}
	result.DerivedAddress = derived

	if normalizeForCompare(wallet.AddressStandard, expected) != normalizeForCompare(wallet.AddressStandard, derived) {
		result.Reason = "derived address does not match expected address"
		result.ErrorCode = "address_mismatch"
		if err := printJSON(ctx.App.Writer, result); err != nil {
			return err
		}
		return cli.Exit("", exitMismatch)
	}

	result.Match = true
	return printJSON(ctx.App.Writer, result)
}

// derivationIndex refuses values that would not survive the conversion to a
// 32-bit child number. Hardened values are left to the deriver.
func derivationIndex(value uint64) (uint32, *apperrors.AppError) {
	if value > math.MaxUint32 {
		return 0, apperrors.NewValidation(
			apperrors.CodeDerivation,
			"derivation index does not fit in 32 bits",
			map[string]any{"index": value},
		)
	}
	return uint32(value), nil
}

func loadWallet(ctx *cli.Context) (valueobjects.WalletConfiguration, *hdwallet.Gateway, *apperrors.AppError) {
	wallet, _, appErr := valueobjects.NewWalletConfiguration(valueobjects.WalletConfigurationInput{
		ExtendedPublicKey: ctx.String(xpubFlag.Name),
		DerivationPath:    ctx.String(pathFlag.Name),
		StrictPath:        ctx.Bool(strictFlag.Name),
	})
	if appErr != nil {
		return valueobjects.WalletConfiguration{}, nil, appErr
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	gateway := hdwallet.NewGateway(logger)
	if appErr := gateway.ValidateConfiguration(context.Background(), wallet); appErr != nil {
		return valueobjects.WalletConfiguration{}, nil, appErr
	}

	return wallet, gateway, nil
}

// Bech32 strings are case-insensitive; base58 strings are not.
func normalizeForCompare(standard valueobjects.AddressStandard, address string) string {
	trimmed := strings.TrimSpace(address)
	switch standard {
	case valueobjects.AddressStandardP2WPKH, valueobjects.AddressStandardP2TR:
		return strings.ToLower(trimmed)
	default:
		return trimmed
	}
}

func verifyFailure(ctx *cli.Context, result verifyResult, appErr *apperrors.AppError) error {
	result.Reason = appErr.Message
	result.ErrorCode = appErr.Code
	if err := printJSON(ctx.App.Writer, result); err != nil {
		return err
	}
	return cli.Exit("", exitError)
}

func failWith(ctx *cli.Context, appErr *apperrors.AppError) error {
	if err := printJSON(ctx.App.Writer, errorResult{
		Reason:    appErr.Message,
		ErrorCode: appErr.Code,
		Details:   appErr.Details,
	}); err != nil {
		return err
	}
	return cli.Exit("", exitError)
}

func printJSON(out io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return cli.Exit("failed to encode result", exitError)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}
