package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/arch/x86/x86asm"

	"github.com/asmcore/x86enc"
	"github.com/asmcore/x86enc/internal/asm/x86"
)

type encodeOptions struct {
	size    int
	lock    bool
	address uint64
	disasm  bool
}

func (o *encodeOptions) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.IntVarP(&o.size, "size", "s", 0, "explicit operand size in bits: 8, 16, 32 or 64")
	flags.BoolVar(&o.lock, "lock", false, "add the LOCK prefix")
	flags.Uint64VarP(&o.address, "address", "a", 0, "address of the instruction")
	flags.BoolVarP(&o.disasm, "disasm", "d", false, "disassemble the encoded bytes")
	return flags
}

func getEncodeCmd(global *globalOptions, logger logrus.FieldLogger) *cobra.Command {
	opts := &encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode <mnemonic> [operand...]",
		Short: "Encode one instruction",
		Long: `Encode one instruction and print its bytes in hex.

Operands are given in Intel order, one per argument:
  rax, r8d, al          registers
  42, -1, 0x1000        immediates (branch targets for jumps and calls)
  $sym, $sym+8          address of a symbol, resolved through a relocation
  [rbx+rcx*4+8]         memory, optionally sized and segmented: "qword fs:[rax]"
  imm64:$sym           immediate of a fixed width: imm8, imm16, imm32 or imm64
  short:0x10            short branch target
  far:0x8:0x1000        far pointer selector:offset
  moffs:0x1000          absolute memory offset of the accumulator MOV forms`,
		Example: `  x86enc encode add rax 5
  x86enc encode --mode 32 --disasm mov eax '[ebx+ecx*4]'
  x86enc encode --size 32 add '[rax]' 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, global, opts, logger, args)
		},
	}
	cmd.Flags().AddFlagSet(opts.flagSet())
	return cmd
}

func runEncode(cmd *cobra.Command, global *globalOptions, opts *encodeOptions, logger logrus.FieldLogger, args []string) error {
	mode, err := global.parseMode()
	if err != nil {
		return err
	}
	features, err := global.parseFeatures()
	if err != nil {
		return err
	}
	size, err := parseSize(opts.size)
	if err != nil {
		return err
	}

	mnemonic := args[0]
	branch := isBranch(mnemonic)
	operands := make([]x86enc.Operand, 0, len(args)-1)
	for _, tok := range args[1:] {
		op, err := parseOperand(tok, branch)
		if err != nil {
			return err
		}
		operands = append(operands, op)
	}

	config := x86enc.NewEncoderConfig().
		WithMode(mode).
		WithFeatures(features).
		WithLogger(logger).
		WithBaseAddress(opts.address)
	enc, err := x86enc.NewEncoder(config)
	if err != nil {
		return err
	}
	text := enc.NewSection(".text")
	if _, err = enc.Encode(text, x86enc.Request{Mnemonic: mnemonic, Size: size, Lock: opts.lock, Operands: operands}); err != nil {
		return err
	}

	p := global.palette()
	out := cmd.OutOrStdout()
	code := text.Bytes()
	fmt.Fprintln(out, p.bytes.Sprint(formatHex(code)))
	for _, r := range text.Relocations().Relocations() {
		fmt.Fprintln(out, p.reloc.Sprintf("reloc %s", r))
	}
	if opts.disasm {
		inst, err := x86asm.Decode(code, int(mode))
		if err != nil {
			return fmt.Errorf("disassemble %s: %w", formatHex(code), err)
		}
		fmt.Fprintln(out, p.asm.Sprint(x86asm.IntelSyntax(inst, opts.address, nil)))
	}
	return nil
}

func parseSize(bits int) (x86.Width, error) {
	switch bits {
	case 0:
		return x86.WidthNone, nil
	case 8, 16, 32, 64:
		return x86.Width(bits), nil
	}
	return x86.WidthNone, fmt.Errorf("invalid operand size: %d", bits)
}

// isBranch returns true for mnemonics whose numeric operand is a branch target.
func isBranch(mnemonic string) bool {
	m := strings.ToLower(mnemonic)
	return m == "call" || m == "loop" || strings.HasPrefix(m, "j")
}

func formatHex(code []byte) string {
	return fmt.Sprintf("% x", code)
}
