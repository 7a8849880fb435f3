package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/asmcore/x86enc/internal/asm/x86"
	"github.com/asmcore/x86enc/internal/asm/x86/opcodes"
)

// variantDoc is the YAML form of an opcode variant.
type variantDoc struct {
	Encoding    string   `yaml:"encoding"`
	Prefix      string   `yaml:"prefix,omitempty"`
	Opcode      string   `yaml:"opcode"`
	Reg         *byte    `yaml:"reg,omitempty"`
	Operands    []string `yaml:"operands,flow"`
	OperandSize int      `yaml:"operand_size,omitempty"`
	Modes       string   `yaml:"modes"`
	Features    string   `yaml:"features,omitempty"`
	DefaultSize bool     `yaml:"default_size,omitempty"`
}

func newVariantDoc(v *x86.Variant) variantDoc {
	doc := variantDoc{
		Encoding:    v.String(),
		Prefix:      hexString(v.Prefix),
		Opcode:      hexString(v.Opcode),
		Operands:    make([]string, 0, len(v.Operands)),
		OperandSize: int(v.OperandSize),
		Modes:       v.Modes.String(),
		Features:    v.Features.String(),
		DefaultSize: v.DefaultSize,
	}
	hasRM, hasReg := false, false
	for _, d := range v.Operands {
		if d.Kind == x86.KindNone {
			continue
		}
		switch d.Role {
		case x86.RoleRM:
			hasRM = true
		case x86.RoleReg:
			hasReg = true
		}
		doc.Operands = append(doc.Operands, d.String())
	}
	// ModR/M.reg holds an opcode extension when no operand takes it.
	if hasRM && !hasReg {
		reg := v.Reg
		doc.Reg = &reg
	}
	return doc
}

func hexString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return fmt.Sprintf("% X", b)
}

func getVariantsCmd(global *globalOptions) *cobra.Command {
	var format string
	var all bool
	cmd := &cobra.Command{
		Use:   "variants <mnemonic>",
		Short: "List the encodings of a mnemonic in selection order",
		Long: `List the encodings of a mnemonic in the order they are tried. The first
encoding accepting the operands of an instruction is the one emitted.

Encodings which can't be used in the selected mode, or with the selected CPU
features, are hidden unless --all is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := global.parseMode()
			if err != nil {
				return err
			}
			features, err := global.parseFeatures()
			if err != nil {
				return err
			}
			variants, ok := opcodes.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown mnemonic %q", args[0])
			}

			var docs []variantDoc
			for i := range variants {
				v := &variants[i]
				if all || v.Supports(mode, features) {
					docs = append(docs, newVariantDoc(v))
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err = enc.Encode(docs); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				p := global.palette()
				for _, doc := range docs {
					line := p.variant.Sprintf("%-36s", doc.Encoding) + " modes=" + doc.Modes
					if doc.Features != "" {
						line += " features=" + doc.Features
					}
					fmt.Fprintln(out, strings.TrimRight(line, " "))
				}
				return nil
			default:
				return fmt.Errorf("invalid format %q: use text or yaml", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	cmd.Flags().BoolVar(&all, "all", false, "include encodings unavailable in the mode or with the features")
	return cmd
}

func getMnemonicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mnemonics",
		Short: "List the supported mnemonics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, m := range opcodes.Mnemonics() {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}
