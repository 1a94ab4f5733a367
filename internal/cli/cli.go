// Package cli implements draftctl, an offline tool for the document pipeline:
// schema validation, repair, totals, JSON extraction, UPI links and export.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"draftly/internal/domain"
	"draftly/internal/export"
	"draftly/internal/extract"
	"draftly/internal/repair"
	"draftly/internal/schema"
	"draftly/internal/service"
	"draftly/internal/upi"
)

// ErrInvalid is returned by validate when the document fails its schema, so
// the process exits non-zero.
var ErrInvalid = errors.New("document is not valid")

// NewRootCommand builds the draftctl command tree. Input is read from the
// file named by --file, or stdin when it is "-" or empty.
func NewRootCommand(stdin io.Reader, stdout io.Writer) *cobra.Command {
	docs := service.NewDocumentService(schema.New(), repair.New(time.Now), nil)

	root := &cobra.Command{
		Use:           "draftly",
		Short:         "Offline tools for drafted commercial documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)

	var file string
	root.PersistentFlags().StringVarP(&file, "file", "f", "-", "input file, - for stdin")

	readInput := func() ([]byte, error) {
		if file == "" || file == "-" {
			return io.ReadAll(stdin)
		}
		return os.ReadFile(file)
	}
	readObject := func() (map[string]any, error) {
		data, err := readInput()
		if err != nil {
			return nil, err
		}
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("%w: input is not a JSON object: %w", domain.ErrInvalidRequest, err)
		}
		return obj, nil
	}

	root.AddCommand(
		validateCommand(docs, readObject, stdout),
		repairCommand(docs, readObject, stdout),
		totalsCommand(docs, readObject, stdout),
		extractCommand(readInput, stdout),
		upiCommand(docs, stdout),
		exportCommand(readObject, stdout),
		schemaCommand(stdout),
	)
	return root
}

func validateCommand(docs service.DocumentService, read func() (map[string]any, error), out io.Writer) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a document against a schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			obj, err := read()
			if err != nil {
				return err
			}
			report, err := docs.Validate(obj, name)
			if err != nil {
				return err
			}
			if err := writeJSON(out, report); err != nil {
				return err
			}
			if !report.OK {
				return ErrInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "schema", "s", schema.Bundle, "schema name")
	return cmd
}

func repairCommand(docs service.DocumentService, read func() (map[string]any, error), out io.Writer) *cobra.Command {
	var report bool
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair a bundle until it is schema-valid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			obj, err := read()
			if err != nil {
				return err
			}
			result := docs.Repair(obj)
			if report {
				return writeJSON(out, result)
			}
			return writeJSON(out, result.Bundle)
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "print validation state before and after")
	return cmd
}

func totalsCommand(docs service.DocumentService, read func() (map[string]any, error), out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Recompute line and document totals of a draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			obj, err := read()
			if err != nil {
				return err
			}
			draft, err := docs.RecomputeTotals(obj)
			if err != nil {
				return err
			}
			return writeJSON(out, draft)
		},
	}
}

func extractCommand(read func() ([]byte, error), out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Recover a JSON object from raw model output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := read()
			if err != nil {
				return err
			}
			obj, err := extract.JSON(string(data))
			if err != nil {
				return err
			}
			return writeJSON(out, obj)
		},
	}
}

func upiCommand(docs service.DocumentService, out io.Writer) *cobra.Command {
	var (
		p      upi.Params
		amount float64
	)
	cmd := &cobra.Command{
		Use:   "upi",
		Short: "Build a UPI payment deep link",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("amount") {
				p.Amount = &amount
			}
			link, err := docs.UPILink(p)
			if err != nil {
				return err
			}
			return writeJSON(out, link)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.UPIID, "upi-id", "", "payee VPA")
	f.StringVar(&p.PayeeName, "payee", "", "payee name")
	f.Float64Var(&amount, "amount", 0, "amount, omitted when unset")
	f.StringVar(&p.Currency, "currency", "INR", "currency code")
	f.StringVar(&p.Note, "note", "", "transaction note")
	f.StringVar(&p.TxnRef, "ref", "", "transaction reference")
	f.StringVar(&p.CallbackURL, "url", "", "callback URL")
	_ = cmd.MarkFlagRequired("upi-id")
	_ = cmd.MarkFlagRequired("payee")
	return cmd
}

func exportCommand(read func() (map[string]any, error), out io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a draft's items and totals as csv or xlsx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			obj, err := read()
			if err != nil {
				return err
			}
			return export.Render(out, format, export.Build(obj))
		},
	}
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or xlsx")
	return cmd
}

func schemaCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "schema [name]",
		Short:     "Print an embedded JSON schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: schema.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Document(args[0])
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
