// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/tidwall/jsonc"

	"github.com/libretro/mist/lib/catalog"
	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/rpc"
)

func callCommand() command {
	const usage = "mistctl call <operation> [arguments | @file]"
	return command{
		name:    "call",
		summary: "Invoke one operation and print its result as JSON",
		usage:   usage,
		run: func(ctx context.Context, env *environment, args []string) error {
			flagSet := newFlagSet("call", usage)
			if done, err := parseFlags(flagSet, args); done {
				return err
			}
			if flagSet.NArg() < 1 || flagSet.NArg() > 2 {
				return fmt.Errorf("usage: %s", usage)
			}
			descriptor, ok := catalog.Operations.ByName(flagSet.Arg(0))
			if !ok {
				return fmt.Errorf("unknown operation %q (run mistctl catalog)", flagSet.Arg(0))
			}
			text, err := argumentText(flagSet.Arg(1))
			if err != nil {
				return err
			}
			callArgs, err := decodeArgs(descriptor, text)
			if err != nil {
				return err
			}

			lib, err := env.open(ctx)
			if err != nil {
				return err
			}
			raw, callErr := lib.Do(ctx, descriptor, callArgs)
			deinitErr := lib.Deinit()
			if callErr != nil {
				return fmt.Errorf("%s: %w", descriptor.Name, callErr)
			}

			value, err := decodeResult(descriptor, raw)
			if err != nil {
				return err
			}
			if err := writeJSON(env.stdout, value); err != nil {
				return err
			}
			return deinitErr
		},
	}
}

// argumentText resolves an @file argument to the file's contents.
func argumentText(argument string) (string, error) {
	path, ok := strings.CutPrefix(argument, "@")
	if !ok {
		return argument, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading arguments: %w", err)
	}
	return string(data), nil
}

// decodeArgs parses JSONC text into the operation's argument type.
// Operations without arguments take no text.
func decodeArgs(descriptor rpc.Descriptor, text string) (any, error) {
	text = strings.TrimSpace(text)
	if !descriptor.HasArgs() {
		if text != "" {
			return nil, fmt.Errorf("%s takes no arguments", descriptor.Name)
		}
		return nil, nil
	}
	if text == "" {
		return nil, fmt.Errorf("%s takes arguments of type %s", descriptor.Name, descriptor.Args)
	}

	target := reflect.New(descriptor.Args)
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON([]byte(text))))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target.Interface()); err != nil {
		return nil, fmt.Errorf("%s arguments (%s): %w", descriptor.Name, descriptor.Args, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%s arguments: trailing data after the value", descriptor.Name)
	}
	return target.Elem().Interface(), nil
}

// decodeResult decodes an encoded result into the operation's result
// type. Operations without a result decode to nil.
func decodeResult(descriptor rpc.Descriptor, raw codec.RawMessage) (any, error) {
	if !descriptor.HasResult() {
		return nil, nil
	}
	target := reflect.New(descriptor.Result)
	if len(raw) > 0 {
		if err := codec.Unmarshal(raw, target.Interface()); err != nil {
			return nil, fmt.Errorf("decoding %s result: %w", descriptor.Name, err)
		}
	}
	return target.Elem().Interface(), nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func catalogCommand() command {
	return command{
		name:    "catalog",
		summary: "List every operation with its argument and result types",
		usage:   "mistctl catalog",
		run: func(ctx context.Context, env *environment, args []string) error {
			flagSet := newFlagSet("catalog", "mistctl catalog")
			if done, err := parseFlags(flagSet, args); done {
				return err
			}
			return writeCatalog(env.stdout, catalog.Operations.All())
		},
	}
}

func writeCatalog(w io.Writer, descriptors []rpc.Descriptor) error {
	writer := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tARGUMENTS\tRESULT\tNOTES")
	for _, descriptor := range descriptors {
		arguments, result := "-", "-"
		if descriptor.HasArgs() {
			arguments = descriptor.Args.String()
		}
		if descriptor.HasResult() {
			result = descriptor.Result.String()
		}
		var notes []string
		if descriptor.OneWay {
			notes = append(notes, "one-way")
		}
		if descriptor.Timeout > 0 {
			notes = append(notes, "timeout "+descriptor.Timeout.String())
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n", descriptor.ID, descriptor.Name, arguments, result, strings.Join(notes, ", "))
	}
	return writer.Flush()
}
