package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rld/internal/common/fsutil"
	"rld/internal/tensor"
	"rld/pkg/types"
)

// outputFlag selects json or yaml rendering.
type outputFlag struct{ format string }

func (o *outputFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", "json", "output format: json or yaml")
}

func (o *outputFlag) write(w io.Writer, v any) error {
	switch o.format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}
}

// readJSON decodes an argument ("-" for stdin, "@file", or inline JSON).
func readJSON(cmd *cobra.Command, arg string) (any, error) {
	b, err := fsutil.ReadInput(arg, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return v, nil
}

func newSpaceCmd(f *rootFlags) *cobra.Command {
	var out outputFlag
	cmd := &cobra.Command{
		Use:   "space [model]",
		Short: "Print a model's observation and action spaces",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			resp, err := svc.Describe(modelArg(args))
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), resp)
		},
	}
	out.register(cmd)
	return cmd
}

func newSizeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "size [model]",
		Short: "Print the flat element count of a model's observation space",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			n, err := svc.Size(modelArg(args))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
}

func newPackCmd(f *rootFlags) *cobra.Command {
	var (
		out   outputFlag
		batch bool
	)
	cmd := &cobra.Command{
		Use:     "pack <model> <obs|-|@file>",
		Short:   "Flatten a structured JSON observation",
		Example: "  rld pack robot '{\"pos\":[1,2],\"vel\":[3]}'\n  rld pack robot @batch.json --batch",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			v, err := readJSON(cmd, args[1])
			if err != nil {
				return err
			}
			req, err := obsRequest(v, batch)
			if err != nil {
				return err
			}
			resp, err := svc.Pack(args[0], req)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVar(&batch, "batch", false, "input is a JSON array of observations")
	out.register(cmd)
	return cmd
}

func newUnpackCmd(f *rootFlags) *cobra.Command {
	var (
		out     outputFlag
		batched bool
	)
	cmd := &cobra.Command{
		Use:     "unpack <model> <flat|-|@file>",
		Short:   "Restore the structured form of a flat observation",
		Example: "  rld unpack robot '[1,2,3]' -o yaml\n  echo '[[1,2,3],[4,5,6]]' | rld unpack robot - --batched",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			v, err := readJSON(cmd, args[1])
			if err != nil {
				return err
			}
			arr, err := tensor.AsArray(v)
			if err != nil {
				return err
			}
			want := 1
			if batched {
				want = 2
			}
			if len(arr.Shape) != want {
				return fmt.Errorf("flat input has rank %d, want %d (use --batched for [N, size])", len(arr.Shape), want)
			}
			resp, err := svc.Unpack(args[0], types.UnpackRequest{Flat: v})
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVar(&batched, "batched", false, "input is [N, size]; leaves gain a leading batch dim")
	out.register(cmd)
	return cmd
}

func newForwardCmd(f *rootFlags) *cobra.Command {
	var (
		out   outputFlag
		batch bool
		flat  bool
	)
	cmd := &cobra.Command{
		Use:   "forward <model> <input|-|@file>",
		Short: "Run a model on a structured (default) or flat observation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			v, err := readJSON(cmd, args[1])
			if err != nil {
				return err
			}
			var req types.ForwardRequest
			if flat {
				req.Flat = v
			} else {
				p, err := obsRequest(v, batch)
				if err != nil {
					return err
				}
				req.Obs, req.Batch = p.Obs, p.Batch
			}
			resp, err := svc.Forward(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVar(&batch, "batch", false, "input is a JSON array of structured observations")
	cmd.Flags().BoolVar(&flat, "flat", false, "input is an already packed [size] or [N, size] block")
	cmd.MarkFlagsMutuallyExclusive("batch", "flat")
	out.register(cmd)
	return cmd
}

func newBaselineCmd(f *rootFlags) *cobra.Command {
	var (
		out  outputFlag
		kind string
	)
	cmd := &cobra.Command{
		Use:   "baseline [model]",
		Short: "Print an attribution baseline for a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := f.loadService(cmd)
			if err != nil {
				return err
			}
			resp, err := svc.Baseline(modelArg(args), kind)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "zeros", "baseline kind: zeros or midpoint")
	out.register(cmd)
	return cmd
}

// obsRequest splits decoded input into a single observation or a batch.
func obsRequest(v any, batch bool) (types.PackRequest, error) {
	if !batch {
		return types.PackRequest{Obs: v}, nil
	}
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return types.PackRequest{}, fmt.Errorf("--batch expects a non-empty JSON array")
	}
	return types.PackRequest{Batch: items}, nil
}

func modelArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
