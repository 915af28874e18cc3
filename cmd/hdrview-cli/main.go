package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"hdrview/internal/config"
	"hdrview/internal/edit"
	"hdrview/internal/hdrimage"
	"hdrview/internal/scan"
	"hdrview/internal/service"
	"hdrview/internal/session"
	"hdrview/internal/stats"
	"hdrview/internal/viewer"
	"hdrview/internal/workspace"
)

var (
	dbPathFlag string
	store      *session.Store
	svc        *service.Service
)

func cliLogger(msg string) {
	log.Printf("[hdrview-cli] %s", msg)
}

// displayFlags are the tone mapping options shared by the commands that
// produce 8-bit output.
type displayFlags struct {
	exposure float32
	gamma    float32
	srgb     bool
	dither   bool
}

func (d *displayFlags) bind(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().Float32VarP(&d.exposure, "exposure", "e", def.Exposure, "Exposure in stops")
	cmd.Flags().Float32VarP(&d.gamma, "gamma", "g", def.Gamma, "Display gamma, used with --srgb=false")
	cmd.Flags().BoolVar(&d.srgb, "srgb", def.SRGB, "Use the sRGB transfer curve")
	cmd.Flags().BoolVar(&d.dither, "dither", def.Dither, "Dither when quantizing to 8 bits")
}

func (d displayFlags) params() hdrimage.DisplayParams {
	return hdrimage.DisplayParams{Exposure: d.exposure, Gamma: d.gamma, SRGB: d.srgb, Dither: d.dither}
}

// NewRootCmd creates the root command for the CLI application.
// openService initializes the service and its session store; tests pass
// their own to control where the database lives.
func NewRootCmd(openService func(dbPath string, logger session.LoggerFunc) (*service.Service, *session.Store, error)) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "hdrview-cli",
		Short: "hdrview CLI - inspect, edit and convert high dynamic range images",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if store != nil {
				store.Close()
			}
			var err error
			svc, store, err = openService(dbPathFlag, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize service: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				store.Close()
				store = nil
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInfoCmd(),
		newHistogramCmd(),
		newPixelCmd(),
		newProbeCmd(),
		newExportCmd(),
		newThumbnailCmd(),
		newEditCmd(),
		newListCmd(),
		newStateCmd(),
		newRecentCmd(),
	)

	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "dbpath", "", "Directory of the session database")

	return rootCmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [image]",
		Short: "Show size, file metadata and per-channel statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, _, err := svc.Images.GetImageInfo(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:     %s\n", filepath.Base(info.Path))
			fmt.Fprintf(out, "Format:   %s\n", info.Format)
			fmt.Fprintf(out, "Size:     %dx%d\n", info.Width, info.Height)
			fmt.Fprintf(out, "Bytes:    %d\n", info.Size)
			fmt.Fprintf(out, "Modified: %s\n", info.ModTime.Format("2006-01-02 15:04:05"))

			if len(info.EXIFData) > 0 {
				keys := make([]string, 0, len(info.EXIFData))
				for k := range info.EXIFData {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintln(out, "EXIF:")
				for _, k := range keys {
					fmt.Fprintf(out, "  %s: %s\n", k, info.EXIFData[k])
				}
			}

			fmt.Fprintf(out, "%-3s %10s %10s %10s %10s\n", "", "mean", "stddev", "min", "max")
			for i, name := range stats.ChannelNames {
				s := info.Stats
				fmt.Fprintf(out, "%-3s %10.4f %10.4f %10.4f %10.4f\n", name, s.Mean[i], s.StdDev[i], s.Min[i], s.Max[i])
			}
			return nil
		},
	}
}

func newHistogramCmd() *cobra.Command {
	var (
		modeFlag string
		bins     int
		exposure float32
	)
	cmd := &cobra.Command{
		Use:   "histogram [image]",
		Short: "Print per-channel histogram counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := stats.ParseMode(modeFlag)
			if !ok {
				return fmt.Errorf("unknown histogram mode %q (want linear or display)", modeFlag)
			}
			if bins <= 0 {
				return errors.New("bins must be positive")
			}
			svc.Settings.HistogramBins = bins
			doc, err := svc.OpenDocument(args[0])
			if err != nil {
				return err
			}
			h := doc.Histogram(mode, exposure)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s histogram, exposure %g, %d pixels\n", h.Mode, h.Exposure, h.Pixels)
			fmt.Fprintf(out, "%5s %8s %8s %8s\n", "bin", stats.ChannelNames[0], stats.ChannelNames[1], stats.ChannelNames[2])
			for i := 0; i < h.Bins(); i++ {
				fmt.Fprintf(out, "%5d %8d %8d %8d\n", i, h.Counts[0][i], h.Counts[1][i], h.Counts[2][i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", stats.Linear.String(), "Histogram mode: linear or display")
	cmd.Flags().IntVar(&bins, "bins", stats.DefaultBins, "Number of bins")
	cmd.Flags().Float32VarP(&exposure, "exposure", "e", 0, "Exposure in stops applied before binning")
	return cmd
}

func newPixelCmd() *cobra.Command {
	var display displayFlags
	cmd := &cobra.Command{
		Use:   "pixel [image] [x] [y]",
		Short: "Print the value of one pixel",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePos(args[1] + "," + args[2])
			if err != nil {
				return err
			}
			doc, err := svc.OpenDocument(args[0])
			if err != nil {
				return err
			}
			x, y := int(pos.X), int(pos.Y)
			c, ok := doc.PixelAt(x, y)
			if !ok {
				return fmt.Errorf("pixel (%d, %d) is outside the %dx%d image", x, y, doc.Size().X, doc.Size().Y)
			}
			d := display.params().Display(c, x, y)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "raw:     %.4f %.4f %.4f %.4f\n", c.R, c.G, c.B, c.A)
			fmt.Fprintf(out, "display: %d %d %d %d\n", d.R, d.G, d.B, d.A)
			return nil
		},
	}
	display.bind(cmd)
	return cmd
}

func newProbeCmd() *cobra.Command {
	var (
		window     string
		at         string
		pan        string
		zoomLevel  float32
		fit        bool
		zoomSteps  int
		gridThr    float32
		pixInfoThr float32
	)
	cmd := &cobra.Command{
		Use:   "probe [image]",
		Short: "Show how a viewer window of the given size maps to the image",
		Long: `Probe sets up the same view transform the GUI uses and reports the zoom,
offset, image rectangle and the pixel under --at. Use --fit, --zoom-level,
--zoom-steps and --pan to change the view before probing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(window)
			if err != nil {
				return err
			}
			doc, err := svc.OpenDocument(args[0])
			if err != nil {
				return err
			}
			ws := workspace.New()
			ws.Add(doc)
			c := viewer.New(ws)
			c.Resize(size, fyne.Position{})
			c.SetGridThreshold(gridThr)
			c.SetPixelInfoThreshold(pixInfoThr)

			switch {
			case fit:
				c.Fit()
			case cmd.Flags().Changed("zoom-level"):
				c.SetZoomLevel(zoomLevel)
			}
			for i := 0; i < zoomSteps; i++ {
				c.ZoomIn()
			}
			for i := 0; i > zoomSteps; i-- {
				c.ZoomOut()
			}
			if pan != "" {
				delta, err := parsePos(pan)
				if err != nil {
					return err
				}
				c.Drag(fyne.NewPos(size.Width/2, size.Height/2), delta)
			}

			v := c.Viewport()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "zoom:    %.4f (level %.2f)\n", v.Zoom(), v.ZoomLevel())
			fmt.Fprintf(out, "offset:  %.2f,%.2f\n", v.Offset().X, v.Offset().Y)
			if pos, sz, ok := c.ImageRect(); ok {
				fmt.Fprintf(out, "image:   %.2f,%.2f %.2fx%.2f\n", pos.X, pos.Y, sz.Width, sz.Height)
			}
			r := v.VisiblePixels()
			fmt.Fprintf(out, "visible: %d,%d-%d,%d\n", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
			fmt.Fprintf(out, "grid:    %t (alpha %.3f)\n", v.GridVisible(), v.GridAlpha())
			fmt.Fprintf(out, "values:  %t (alpha %.3f)\n", v.PixelInfoVisible(), v.PixelInfoAlpha())

			if at != "" {
				p, err := parsePos(at)
				if err != nil {
					return err
				}
				h := c.PixelUnderCursor(p)
				coord := v.ImageCoordinateAt(p)
				fmt.Fprintf(out, "coord:   %.3f,%.3f\n", coord.X, coord.Y)
				if !h.Inside {
					fmt.Fprintf(out, "pixel:   %d,%d outside\n", h.Pixel.X, h.Pixel.Y)
					return nil
				}
				fmt.Fprintf(out, "pixel:   %d,%d\n", h.Pixel.X, h.Pixel.Y)
				fmt.Fprintf(out, "raw:     %.4f %.4f %.4f %.4f\n", h.Raw.R, h.Raw.G, h.Raw.B, h.Raw.A)
				fmt.Fprintf(out, "display: %.0f %.0f %.0f %.0f\n", h.Display.R, h.Display.G, h.Display.B, h.Display.A)
			}
			return nil
		},
	}
	def := config.Default()
	cmd.Flags().StringVar(&window, "window", "800x600", "Viewer size as WIDTHxHEIGHT")
	cmd.Flags().StringVar(&at, "at", "", "Screen position X,Y to probe")
	cmd.Flags().StringVar(&pan, "pan", "", "Drag the view by DX,DY before probing")
	cmd.Flags().Float32Var(&zoomLevel, "zoom-level", 0, "Zoom level; zoom = sensitivity^level")
	cmd.Flags().BoolVar(&fit, "fit", false, "Fit the image to the window")
	cmd.Flags().IntVar(&zoomSteps, "zoom-steps", 0, "Power of two zoom steps, negative to zoom out")
	cmd.Flags().Float32Var(&gridThr, "grid-threshold", def.GridThreshold, "Zoom at which the pixel grid appears, -1 disables")
	cmd.Flags().Float32Var(&pixInfoThr, "pixel-info-threshold", def.PixelInfoThreshold, "Zoom at which pixel values appear, -1 disables")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		display displayFlags
		crop    string
	)
	cmd := &cobra.Command{
		Use:   "export [image] [output]",
		Short: "Tone map an image to an 8-bit format chosen by the output extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRect(crop)
			if err != nil {
				return err
			}
			doc, err := svc.OpenDocument(args[0])
			if err != nil {
				return err
			}
			if err := svc.ExportLDR(doc, args[1], display.params(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", args[1])
			return nil
		},
	}
	display.bind(cmd)
	cmd.Flags().StringVar(&crop, "crop", "", "Export only X0,Y0,X1,Y1")
	return cmd
}

func newThumbnailCmd() *cobra.Command {
	var (
		display displayFlags
		size    uint
	)
	cmd := &cobra.Command{
		Use:   "thumbnail [image] [output]",
		Short: "Write a small tone mapped preview",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size == 0 {
				return errors.New("size must be positive")
			}
			doc, err := svc.OpenDocument(args[0])
			if err != nil {
				return err
			}
			thumb := svc.Images.Thumbnail(doc.Image(), display.params(), size, size)
			if err := imaging.Save(thumb, args[1]); err != nil {
				return fmt.Errorf("failed to write thumbnail: %w", err)
			}
			b := thumb.Bounds()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d thumbnail to %s\n", b.Dx(), b.Dy(), args[1])
			return nil
		},
	}
	display.bind(cmd)
	cmd.Flags().UintVar(&size, "size", service.ThumbnailWidth, "Maximum width and height")
	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		ops      []string
		undo     int
		output   string
		capacity int
	)
	cmd := &cobra.Command{
		Use:   "edit [image]",
		Short: "Apply edits through the undo history and save the result",
		Long: `Edit applies each --op in order (fliph, flipv, gain:STOPS), then undoes
the last --undo of them and saves as Radiance to --output, or over the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ops) == 0 {
				return errors.New("at least one --op is required")
			}
			svc.Settings.HistoryCapacity = capacity
			doc, err := svc.OpenDocument(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, op := range ops {
				name, amount, err := parseEdit(op)
				if err != nil {
					return err
				}
				c, err := edit.ByName(name, amount)
				if err != nil {
					return err
				}
				if err := doc.Modify(c); err != nil {
					return err
				}
				fmt.Fprintf(out, "applied %s\n", c.Name())
			}
			for i := 0; i < undo; i++ {
				name, _ := doc.History().UndoName()
				if !doc.Undo() {
					break
				}
				fmt.Fprintf(out, "undid %s\n", name)
			}
			if !doc.IsModified() {
				fmt.Fprintln(out, "no changes to save")
				return nil
			}
			if err := svc.SaveDocument(doc, output); err != nil {
				return err
			}
			fmt.Fprintf(out, "saved %s (%d edits in history)\n", doc.Filename(), doc.History().UndoLen())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&ops, "op", nil, "Edit to apply: fliph, flipv or gain:STOPS (repeatable)")
	cmd.Flags().IntVar(&undo, "undo", 0, "Number of edits to undo before saving")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .hdr or .pic file (default: overwrite input)")
	cmd.Flags().IntVar(&capacity, "capacity", config.Default().HistoryCapacity, "Undo history capacity")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [directory]",
		Short: "List the supported images below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := svc.ListImages(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No images found.")
				return nil
			}
			sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
			for _, item := range items {
				fmt.Fprintln(cmd.OutOrStdout(), item.Path)
			}
			return nil
		},
	}
}

func newStateCmd() *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Manage the saved per-image view state",
	}

	getCmd := &cobra.Command{
		Use:   "get [image]",
		Short: "Show the saved view state of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			vs, err := store.ViewState(path)
			if errors.Is(err, session.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No view state saved for %s.\n", path)
				return nil
			}
			if err != nil {
				return err
			}
			printViewState(cmd.OutOrStdout(), vs)
			return nil
		},
	}

	var (
		vs      session.ViewState
		offsetF string
	)
	setCmd := &cobra.Command{
		Use:   "set [image]",
		Short: "Change the saved view state of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			current, err := store.ViewState(path)
			if errors.Is(err, session.ErrNotFound) {
				def := config.Default()
				current = session.ViewState{Exposure: def.Exposure, Gamma: def.Gamma, SRGB: def.SRGB, Channel: viewer.ChannelRGB.String()}
			} else if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("exposure") {
				current.Exposure = vs.Exposure
			}
			if f.Changed("gamma") {
				if vs.Gamma <= 0 {
					return errors.New("gamma must be positive")
				}
				current.Gamma = vs.Gamma
			}
			if f.Changed("srgb") {
				current.SRGB = vs.SRGB
			}
			if f.Changed("zoom-level") {
				current.ZoomLevel = vs.ZoomLevel
			}
			if f.Changed("channel") {
				if _, ok := viewer.ParseChannel(vs.Channel); !ok {
					return fmt.Errorf("unknown channel %q", vs.Channel)
				}
				current.Channel = vs.Channel
			}
			if f.Changed("offset") {
				p, err := parsePos(offsetF)
				if err != nil {
					return err
				}
				current.OffsetX, current.OffsetY = p.X, p.Y
			}
			if err := store.SaveViewState(path, current); err != nil {
				return err
			}
			printViewState(cmd.OutOrStdout(), current)
			return nil
		},
	}
	setCmd.Flags().Float32VarP(&vs.Exposure, "exposure", "e", 0, "Exposure in stops")
	setCmd.Flags().Float32VarP(&vs.Gamma, "gamma", "g", 0, "Display gamma")
	setCmd.Flags().BoolVar(&vs.SRGB, "srgb", true, "Use the sRGB transfer curve")
	setCmd.Flags().Float32Var(&vs.ZoomLevel, "zoom-level", 0, "Zoom level")
	setCmd.Flags().StringVar(&vs.Channel, "channel", "", "Channel: "+channelList())
	setCmd.Flags().StringVar(&offsetF, "offset", "", "View offset X,Y")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List images with a saved view state",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := store.Paths()
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No view states saved.")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove session data for files that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := svc.CleanSessions()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale entries.\n", n)
			return nil
		},
	}

	stateCmd.AddCommand(getCmd, setCmd, listCmd, cleanCmd)
	return stateCmd
}

func newRecentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened images",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := svc.RecentFiles(limit)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent files.")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", f.Opened.Local().Format("2006-01-02 15:04"), f.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultRecentLimit, "Maximum entries, 0 for all")
	return cmd
}

func printViewState(w io.Writer, vs session.ViewState) {
	fmt.Fprintf(w, "exposure:   %g\n", vs.Exposure)
	fmt.Fprintf(w, "gamma:      %g\n", vs.Gamma)
	fmt.Fprintf(w, "srgb:       %t\n", vs.SRGB)
	fmt.Fprintf(w, "zoom level: %g\n", vs.ZoomLevel)
	fmt.Fprintf(w, "offset:     %g,%g\n", vs.OffsetX, vs.OffsetY)
	if vs.Channel != "" {
		fmt.Fprintf(w, "channel:    %s\n", vs.Channel)
	}
}

func channelList() string {
	var names []string
	for _, c := range viewer.Channels() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

func openService(dbPath string, logger session.LoggerFunc) (*service.Service, *session.Store, error) {
	st, err := session.Open(dbPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session DB: %w", err)
	}
	return service.NewService(st, scan.FileScannerImpl{}, logger), st, nil
}

func main() {
	rootCmd := NewRootCmd(openService)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
