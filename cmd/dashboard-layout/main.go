package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/wcatz/dashboard-layout/internal/board"
	"github.com/wcatz/dashboard-layout/internal/config"
	"github.com/wcatz/dashboard-layout/internal/layout"
	"github.com/wcatz/dashboard-layout/internal/server"
	"github.com/wcatz/dashboard-layout/internal/store"
)

var (
	cfgFile      string
	userID       string
	deviceID     string
	storeBackend string
	storePath    string
	listenAddr   string
	preset       string
	outputFile   string
	dryRun       bool
	verbose      bool
	showWidget   bool
	hideWidget   bool
	resizeWidth  float64
	resizeHeight int
	renderWidth  int

	widgetTitle   string
	widgetIcon    string
	widgetVisible bool
	widgetWidth   float64
	widgetHeight  int
	widgetDefault bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dashboard-layout",
		Short:         "arrange dashboard widgets into rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to YAML config file (required)")
	pf.StringVar(&userID, "user", "", "signed-in user id (selects the user scope)")
	pf.StringVar(&deviceID, "device", "", "device id, or 'auto' to use the saved device id")
	pf.StringVar(&storeBackend, "store", "", "override store backend (memory, file, sqlite, redis, mongo)")
	pf.StringVar(&storePath, "store-path", "", "override store path (file and sqlite backends)")
	pf.BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.MarkPersistentFlagRequired("config")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "start the JSON API server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from config, else :8080)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "print the current arrangement",
		RunE:  runShow,
	}
	showCmd.Flags().IntVar(&renderWidth, "width", 96, "render width in columns")

	dragCmd := &cobra.Command{
		Use:   "drag <widget> <target>",
		Short: "drop a widget on another widget or a row gap (row-gap-N)",
		Args:  cobra.ExactArgs(2),
		RunE:  runDrag,
	}

	resizeCmd := &cobra.Command{
		Use:   "resize <widget>",
		Short: "resize a widget; row-mates absorb the width change",
		Args:  cobra.ExactArgs(1),
		RunE:  runResize,
	}
	resizeCmd.Flags().Float64Var(&resizeWidth, "width", 0, "width in percent of the row")
	resizeCmd.Flags().IntVar(&resizeHeight, "height", 0, "height in pixels")

	toggleCmd := &cobra.Command{
		Use:   "toggle <widget>",
		Short: "show or hide a widget (flips when neither --show nor --hide is given)",
		Args:  cobra.ExactArgs(1),
		RunE:  runToggle,
	}
	toggleCmd.Flags().BoolVar(&showWidget, "show", false, "show the widget")
	toggleCmd.Flags().BoolVar(&hideWidget, "hide", false, "hide the widget")
	toggleCmd.MarkFlagsMutuallyExclusive("show", "hide")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "restore the default arrangement",
		RunE:  runReset,
	}
	resetCmd.Flags().StringVar(&preset, "preset", "", "reset to a named preset from config")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "write the placed arrangement as JSON",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&outputFile, "output", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "encode only, do not write the file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the config and the saved arrangement",
		RunE:  runValidate,
	}

	widgetCmd := &cobra.Command{
		Use:   "widget",
		Short: "edit the widget catalog in the config file",
	}
	widgetAddCmd := &cobra.Command{
		Use:   "add <id>",
		Short: "add a widget to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runWidgetAdd,
	}
	widgetAddCmd.Flags().StringVar(&widgetTitle, "title", "", "display title")
	widgetAddCmd.Flags().StringVar(&widgetIcon, "icon", "", "icon name")
	widgetAddCmd.Flags().BoolVar(&widgetVisible, "default-visible", false, "show in the default arrangement")
	widgetAddCmd.Flags().Float64Var(&widgetWidth, "width", 0, "preferred width in percent")
	widgetAddCmd.Flags().IntVar(&widgetHeight, "height", 0, "preferred height in pixels")
	widgetRemoveCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "remove a widget from the catalog and every preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runWidgetRemove,
	}
	widgetDefaultCmd := &cobra.Command{
		Use:   "default <id>",
		Short: "set whether a widget is part of the default arrangement",
		Args:  cobra.ExactArgs(1),
		RunE:  runWidgetDefault,
	}
	widgetDefaultCmd.Flags().BoolVar(&widgetDefault, "visible", true, "show in the default arrangement")
	widgetCmd.AddCommand(widgetAddCmd, widgetRemoveCmd, widgetDefaultCmd)

	rootCmd.AddCommand(serveCmd, showCmd, dragCmd, resizeCmd, toggleCmd, resetCmd, exportCmd, validateCmd, widgetCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cliArgs := make(map[string]string)
	if storeBackend != "" {
		cliArgs["store_backend"] = storeBackend
	}
	if storePath != "" {
		cliArgs["store_path"] = storePath
	}
	if listenAddr != "" {
		cliArgs["listen_addr"] = listenAddr
	}
	cfg, err := config.Load(cfgFile, cliArgs)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveScope picks the store scope from --user and --device.
func resolveScope(cfg *config.Config) (string, error) {
	dev := deviceID
	if dev == "auto" {
		path := cfg.DeviceIDFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("locating device id: %w", err)
			}
			path = filepath.Join(home, ".config", "dashboard-layout", "device-id")
		}
		id, err := store.LoadDeviceID(cfg.ResolveRef(path))
		if err != nil {
			return "", err
		}
		dev = id
	}
	return store.Scope(userID, dev), nil
}

// session is an opened config, store and board for one CLI invocation.
type session struct {
	cfg     *config.Config
	catalog layout.Catalog
	store   store.Store
	board   *board.Board
}

func openSession(ctx context.Context) (*session, error) {
	logger := loggerFromContext(ctx)
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog("")
	if err != nil {
		return nil, err
	}
	scope, err := resolveScope(cfg)
	if err != nil {
		return nil, err
	}

	sc := cfg.StoreConfig()
	st, err := store.Open(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", sc.Backend, err)
	}
	logger.Debug("store opened", "backend", sc.Backend, "scope", scope)

	b, err := board.NewService(st, catalog, logger).Board(ctx, scope)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &session{cfg: cfg, catalog: catalog, store: st, board: b}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) print() {
	fmt.Println(renderBoard(s.board.Rows(), s.catalog, renderWidth))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(cfgFile, st, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cfg.ListenAddr())
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	printInfo("scope %s", s.board.Scope())
	s.print()
	return nil
}

func runDrag(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.board.StartDrag(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if _, err := s.board.EndDrag(ctx, g.ID, args[1]); err != nil {
		return err
	}
	printSuccess("dropped %s on %s", args[0], args[1])
	s.print()
	return nil
}

func runResize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var w *float64
	var h *int
	if cmd.Flags().Changed("width") {
		w = &resizeWidth
	}
	if cmd.Flags().Changed("height") {
		h = &resizeHeight
	}
	if w == nil && h == nil {
		return fmt.Errorf("nothing to resize: pass --width and/or --height")
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.board.CommitResize(ctx, args[0], w, h); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printSuccess("resized %s", args[0])
	s.print()
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id := args[0]
	if !s.catalog.Has(id) {
		return fmt.Errorf("widget '%s' not defined in config", id)
	}
	visible := !s.board.Snapshot().VisibleSet().Has(id)
	switch {
	case showWidget:
		visible = true
	case hideWidget:
		visible = false
	}
	s.board.Toggle(ctx, id, visible)
	if visible {
		printSuccess("%s shown", id)
	} else {
		printSuccess("%s hidden", id)
	}
	s.print()
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var catalog layout.Catalog
	if preset != "" {
		if catalog, err = s.cfg.Catalog(preset); err != nil {
			return err
		}
	}
	s.board.Reset(ctx, catalog)
	printSuccess("layout reset")
	s.print()
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	e := board.NewExport(s.board)
	if outputFile == "" {
		data, err := board.MarshalExport(e)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	_, err = board.WriteFrame(e, outputFile, dryRun)
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printSuccess("config OK: %d widgets, %d presets", len(cfg.Widgets), len(cfg.Presets))

	catalog, err := cfg.Catalog("")
	if err != nil {
		return err
	}
	scope, err := resolveScope(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(ctx, scope)
	if err != nil {
		return err
	}
	if snap == nil {
		printInfo("no saved layout for %s", scope)
		return nil
	}
	if _, ok := layout.Sanitize(snap.State(), catalog); !ok {
		return fmt.Errorf("saved layout for %s references widgets not in config; it will be replaced by defaults", scope)
	}
	printSuccess("saved layout for %s OK (%d visible)", scope, len(snap.Visible))
	return nil
}

func runWidgetAdd(cmd *cobra.Command, args []string) error {
	def := config.WidgetDef{
		Title:          widgetTitle,
		Icon:           widgetIcon,
		DefaultVisible: widgetVisible,
		Width:          widgetWidth,
		Height:         widgetHeight,
	}
	if err := config.NewYAMLEditor(cfgFile).AddWidget(args[0], def); err != nil {
		return err
	}
	if _, err := loadConfig(); err != nil {
		return fmt.Errorf("config invalid after adding %s: %w", args[0], err)
	}
	printSuccess("added widget %s", args[0])
	return nil
}

func runWidgetRemove(cmd *cobra.Command, args []string) error {
	if err := config.NewYAMLEditor(cfgFile).DeleteWidget(args[0]); err != nil {
		return err
	}
	printSuccess("removed widget %s", args[0])
	return nil
}

func runWidgetDefault(cmd *cobra.Command, args []string) error {
	if err := config.NewYAMLEditor(cfgFile).SetDefaultVisible(args[0], widgetDefault); err != nil {
		return err
	}
	if widgetDefault {
		printSuccess("%s shown by default", args[0])
	} else {
		printSuccess("%s hidden by default", args[0])
	}
	return nil
}
