package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/born-ml/relayout/internal/backend/cpu"
	"github.com/born-ml/relayout/internal/config"
	"github.com/born-ml/relayout/internal/normalize"
	"github.com/born-ml/relayout/internal/ops"
	"github.com/born-ml/relayout/internal/tensor"
)

const version = "v0.1.0-dev"

var errRoundTrip = errors.New("round trip mismatch")

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "relayout",
		Short:         "Convert tensors from accelerated layouts to the standard layout",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newVersionCmd(),
		newShapeCmd(),
		newRunCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "relayout version %s\n", version)
}

func newShapeCmd() *cobra.Command {
	shapeCmd := &cobra.Command{
		Use:     "shape",
		Short:   "Reconstruct a standard shape from layout sizes and strides",
		Example: "  relayout shape --sizes 2,3,4 --strides 4,1,12\n  relayout shape --sizes 5,7 --strides 2,2",
		Args:    cobra.NoArgs,
		RunE:    ShapeHandler,
	}

	shapeCmd.Flags().IntSlice("sizes", nil, "Per-dimension sizes as reported by the layout")
	shapeCmd.Flags().IntSlice("strides", nil, "Per-dimension strides as reported by the layout")
	_ = shapeCmd.MarkFlagRequired("sizes")
	_ = shapeCmd.MarkFlagRequired("strides")
	return shapeCmd
}

// ShapeHandler prints the (size, stride) pairs in reconstruction order and
// the resulting shape.
func ShapeHandler(cmd *cobra.Command, _ []string) error {
	sizes, err := cmd.Flags().GetIntSlice("sizes")
	if err != nil {
		return err
	}
	strides, err := cmd.Flags().GetIntSlice("strides")
	if err != nil {
		return err
	}
	if len(sizes) != len(strides) {
		return fmt.Errorf("got %d sizes and %d strides", len(sizes), len(strides))
	}

	dims := normalize.SortDimensions(sizes, strides)
	data := make([][]string, 0, len(dims))
	for i, d := range dims {
		data = append(data, []string{strconv.Itoa(i), strconv.Itoa(d.Size), strconv.Itoa(d.Stride)})
	}

	w := cmd.OutOrStdout()
	renderTable(w, []string{"AXIS", "SIZE", "STRIDE"}, data)
	fmt.Fprintf(w, "\nshape: %v\n", normalize.ReconstructShape(sizes, strides))
	return nil
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Pack a sample tensor and run the configured nodes on it",
		Example: "  relayout run --config node.yaml --shape 2,3,4 --physical 0,2,1",
		Args:    cobra.NoArgs,
		RunE:    RunHandler,
	}

	runCmd.Flags().StringP("config", "c", "", "Path to the node configuration")
	runCmd.Flags().String("shape", "2,3,4", "Standard shape of the sample tensor")
	runCmd.Flags().IntSlice("physical", nil, "Physical axis order of the packed tensor (default: reversed)")
	_ = runCmd.MarkFlagRequired("config")
	return runCmd
}

// RunHandler packs an iota tensor into the requested physical order, feeds it
// to every configured node and checks each output against the original.
func RunHandler(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	normalize.SetLogger(logger)
	ops.SetLogger(logger)
	defer normalize.SetLogger(nil)
	defer ops.SetLogger(nil)

	shapeFlag, _ := cmd.Flags().GetString("shape")
	shape, err := tensor.ParseShape(shapeFlag)
	if err != nil {
		return fmt.Errorf("--shape: %w", err)
	}
	physical, _ := cmd.Flags().GetIntSlice("physical")
	if len(physical) == 0 {
		physical = reversedAxes(len(shape))
	}

	x, err := iotaFloat32(shape)
	if err != nil {
		return err
	}
	backend := cpu.New()
	packed, desc, err := backend.Pack(x, physical)
	if err != nil {
		return err
	}
	logger.Info("packed sample tensor",
		zap.Stringer("tensor", packed),
		zap.Stringer("layout", desc))

	registry := ops.NewDefaultRegistry(backend)

	var failed []string
	data := make([][]string, 0, len(cfg.Nodes))
	for _, nc := range cfg.Nodes {
		status, out := runNode(registry, nc, ops.Input{Tensor: packed, Layout: desc}, x)
		if status != "ok" {
			failed = append(failed, nc.Name)
		}
		data = append(data, []string{nc.Name, nc.Op, out, status})
	}

	renderTable(cmd.OutOrStdout(), []string{"NODE", "OP", "OUTPUT", "STATUS"}, data)

	if len(failed) > 0 {
		return fmt.Errorf("%w: %v", errRoundTrip, failed)
	}
	return nil
}

func runNode(r *ops.Registry, nc config.NodeConfig, in ops.Input, want *tensor.RawTensor) (status, output string) {
	node, err := nc.Node()
	if err != nil {
		return err.Error(), "-"
	}
	kernel, err := r.Create(node)
	if err != nil {
		return err.Error(), "-"
	}
	outType, err := ops.AttrDataType(node)
	if err != nil {
		return err.Error(), "-"
	}

	ctx := ops.NewContext([]ops.Input{in}, []tensor.DataType{outType})
	if err := ops.Run(kernel, ctx); err != nil {
		return err.Error(), "-"
	}

	out := ctx.Output(0)
	if out == nil {
		return "no output", "-"
	}
	if !out.Shape().Equal(want.Shape()) || !slices.Equal(out.AsFloat32(), want.AsFloat32()) {
		return errRoundTrip.Error(), out.String()
	}
	return "ok", out.String()
}

func iotaFloat32(shape tensor.Shape) (*tensor.RawTensor, error) {
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i)
	}
	return tensor.FromSlice(data, shape)
}

func reversedAxes(n int) []int {
	axes := make([]int, n)
	for i := range axes {
		axes[i] = n - 1 - i
	}
	return axes
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
