// Command toon converts JSON documents to TOON and exposes the
// companion generators: random secrets, key pairs, and QR codes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v2/ffcli"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/qr"
	"github.com/paularlott/toon/secret"
)

func main() {
	root := &ffcli.Command{
		Name:       "toon",
		ShortUsage: "toon <subcommand> [flags]",
		FlagSet:    flag.NewFlagSet("toon", flag.ExitOnError),
		Subcommands: []*ffcli.Command{
			encodeCommand(),
			secretCommand(),
			qrCommand(),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil && err != flag.ErrHelp {
		fmt.Fprintln(os.Stderr, "toon:", err)
		os.Exit(1)
	}
}

func encodeCommand() *ffcli.Command {
	fs := flag.NewFlagSet("toon encode", flag.ExitOnError)
	sanitize := fs.Bool("sanitize", false, "coerce non-JSON values instead of failing")
	indent := fs.Int("indent", 2, "spaces per indentation level")

	return &ffcli.Command{
		Name:       "encode",
		ShortUsage: "toon encode [flags] [file]",
		ShortHelp:  "Convert a JSON document to TOON",
		FlagSet:    fs,
		Exec: func(_ context.Context, args []string) error {
			in := io.Reader(os.Stdin)
			if len(args) > 0 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			dec := json.NewDecoder(in)
			dec.UseNumber()
			var v any
			if err := dec.Decode(&v); err != nil {
				return fmt.Errorf("parsing JSON: %w", err)
			}

			out, err := toon.EncodeWithOptions(v, &toon.EncodeOptions{
				Sanitize: *sanitize,
				Indent:   *indent,
			})
			if err != nil {
				return err
			}
			_, err = io.WriteString(os.Stdout, out)
			return err
		},
	}
}

func secretCommand() *ffcli.Command {
	fs := flag.NewFlagSet("toon secret", flag.ExitOnError)
	kind := fs.String("type", "hex", "secret type: hex, base64, alphanumeric, uuid, keypair")
	length := fs.Int("n", 32, "length in bytes (hex, base64) or characters (alphanumeric)")
	alg := fs.String("alg", "ed25519", "key pair algorithm: rsa2048, rsa4096, ec-p256, ec-p384, ed25519")

	return &ffcli.Command{
		Name:       "secret",
		ShortUsage: "toon secret [flags]",
		ShortHelp:  "Generate a random secret or key pair",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			gen := secret.NewGenerator(nil)

			var (
				out string
				err error
			)
			switch *kind {
			case "hex":
				out, err = gen.Hex(*length)
			case "base64":
				out, err = gen.Base64(*length)
			case "alphanumeric":
				out, err = gen.Alphanumeric(*length)
			case "uuid":
				out, err = gen.UUID()
			case "keypair":
				kp, kerr := gen.KeyPair(secret.Algorithm(*alg))
				if kerr != nil {
					return kerr
				}
				// Key pairs print as TOON so the PEM text stays on
				// one quoted line per field.
				out, err = toon.Encode(kp)
				if err != nil {
					return err
				}
				_, err = io.WriteString(os.Stdout, out)
				return err
			default:
				return fmt.Errorf("unknown secret type %q", *kind)
			}
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func qrCommand() *ffcli.Command {
	fs := flag.NewFlagSet("toon qr", flag.ExitOnError)
	levelName := fs.String("level", "M", "error correction level: L, M, Q, H")
	moduleSize := fs.Int("module", 4, "SVG pixels per module")
	border := fs.Int("border", 4, "quiet-zone width in modules")
	ascii := fs.Bool("ascii", false, "render to the terminal instead of SVG")

	return &ffcli.Command{
		Name:       "qr",
		ShortUsage: "toon qr [flags] <text>",
		ShortHelp:  "Render text as a QR code SVG",
		FlagSet:    fs,
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one text argument")
			}
			level, err := qr.ParseLevel(*levelName)
			if err != nil {
				return err
			}

			if *ascii {
				out, err := qr.Text(args[0], level)
				if err != nil {
					return err
				}
				_, err = io.WriteString(os.Stdout, out)
				return err
			}

			svg, err := qr.SVG(args[0], level, &qr.SVGOptions{
				ModuleSize: *moduleSize,
				Border:     *border,
			})
			if err != nil {
				return err
			}
			fmt.Println(svg)
			return nil
		},
	}
}
