// Package tui is the interactive wizard behind init-config.
package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"spantable/internal/config"
	"spantable/internal/output"
)

type Result struct {
	Config     config.Config
	ConfigPath string
	SaveConfig bool
	RunNow     bool
}

// Run starts from base (usually the resolved configuration), lets the user
// edit it and optionally saves it as YAML.
func Run(w io.Writer, base config.Config) (Result, error) {
	printBanner(w)
	state := newFormState(base)

	if err := pickStartingConfig(state); err != nil {
		return Result{}, err
	}

	form := buildForm(state).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return Result{}, err
	}

	return buildResult(state)
}

func printBanner(w io.Writer) {
	fmt.Fprint(w, `
 ┌──────┬──────┐
 │ span │ table│
 ├──────┴──────┤
 │  rowspan &  │
 │   colspan   │
 └─────────────┘
`)
}

// pickStartingConfig offers existing config files as a starting point.
func pickStartingConfig(state *formState) error {
	files, err := listConfigFiles(config.SearchDirs())
	if err != nil {
		return fmt.Errorf("failed to list configs: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	var selected string
	opts := []huh.Option[string]{huh.NewOption("Start from current settings", "")}
	for _, f := range files {
		opts = append(opts, huh.NewOption(fmt.Sprintf("Load %s", f), f))
	}
	selectForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Configurations").
				Description("Start from an existing config file or from the current settings.").
				Options(opts...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeDracula())
	if err := selectForm.Run(); err != nil {
		return err
	}
	if selected == "" {
		return nil
	}

	loaded, err := config.Load(selected, nil)
	if err != nil {
		return err
	}
	*state = *newFormState(loaded.Config)
	state.configPath = selected
	state.overwrite = true
	return nil
}

func listConfigFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		for _, pattern := range []string{"spantable*.yaml", "spantable*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	return files, nil
}

type formState struct {
	source        string
	selector      string
	exclude       string
	tableIndexStr string
	format        string
	section       string
	nullText      string
	mode          string
	timeoutSecStr string
	rateLimitStr  string
	userAgent     string
	waitFor       string
	headless      bool
	cacheDir      string
	depthStr      string
	maxPagesStr   string
	match         string
	sitemap       string
	fixturesDir   string
	parallelStr   string
	configPath    string
	overwrite     bool
	finalAction   string
	base          config.Config
}

func newFormState(cfg config.Config) *formState {
	return &formState{
		source:        cfg.Source,
		selector:      cfg.Selector,
		exclude:       cfg.Exclude,
		tableIndexStr: strconv.Itoa(cfg.TableIndex),
		format:        cfg.Format,
		section:       cfg.Section,
		nullText:      cfg.NullText,
		mode:          cfg.Mode,
		timeoutSecStr: strconv.Itoa(cfg.TimeoutSeconds),
		rateLimitStr:  strconv.FormatFloat(cfg.RateLimitPerSecond, 'f', -1, 64),
		userAgent:     cfg.UserAgent,
		waitFor:       cfg.WaitForSelector,
		headless:      cfg.Headless,
		cacheDir:      cfg.CacheDir,
		depthStr:      strconv.Itoa(cfg.Depth),
		maxPagesStr:   strconv.Itoa(cfg.MaxPages),
		match:         cfg.Match,
		sitemap:       cfg.Sitemap,
		fixturesDir:   cfg.FixturesDir,
		parallelStr:   strconv.Itoa(cfg.Parallel),
		configPath:    config.DefaultConfigPath(),
		finalAction:   "save_only",
		base:          cfg,
	}
}

func buildForm(state *formState) *huh.Form {
	return huh.NewForm(
		buildSourceGroup(state),
		buildOutputGroup(state),
		buildNetworkGroup(state),
		buildHarvestGroup(state),
		buildFixtureGroup(state),
		buildFinishGroup(state),
	)
}

func buildSourceGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Source").Placeholder("page.html, https://example.com or -").Value(&state.source).
			Description("Default document for dump and inspect."),
		huh.NewInput().Title("Selector").Description("CSS selector narrowing the document.").Placeholder("#content").Value(&state.selector),
		huh.NewInput().Title("Exclude").Description("CSS selector of nodes to drop (footnotes etc).").Placeholder("sup.reference").Value(&state.exclude),
		huh.NewInput().Title("Table index").Description("0-based, in document order.").Value(&state.tableIndexStr).
			Validate(validateIntString(0, 100000)),
	).Title("Source")
}

func buildOutputGroup(state *formState) *huh.Group {
	formats := make([]huh.Option[string], 0, len(output.Formats()))
	for _, f := range output.Formats() {
		formats = append(formats, huh.NewOption(f, f))
	}
	return huh.NewGroup(
		huh.NewSelect[string]().Title("Format").Value(&state.format).Options(formats...),
		huh.NewSelect[string]().Title("Section").Value(&state.section).Options(
			huh.NewOption("all", "all"),
			huh.NewOption("head", "head"),
			huh.NewOption("body", "body"),
			huh.NewOption("foot", "foot"),
		),
		huh.NewInput().Title("Null text").Description("Shown where no cell covers a position.").Value(&state.nullText),
	).Title("Output")
}

func buildNetworkGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().Title("Mode").Description("Fetching strategy for URLs.").Value(&state.mode).Options(
			huh.NewOption("auto", "auto"),
			huh.NewOption("static", "static"),
			huh.NewOption("dynamic", "dynamic"),
		),
		huh.NewInput().Title("Timeout (seconds)").Value(&state.timeoutSecStr).
			Validate(validateIntString(1, 3600)),
		huh.NewInput().Title("Rate limit (requests/sec, 0=off)").Value(&state.rateLimitStr).
			Validate(validateFloatString(0, 1000)),
		huh.NewInput().Title("Wait-for selector").Description("Dynamic mode: wait for this element.").Placeholder("table").Value(&state.waitFor),
		huh.NewConfirm().Title("Headless").Description("Hide browser window (dynamic)?").Value(&state.headless),
		huh.NewInput().Title("User-Agent").Value(&state.userAgent),
		huh.NewInput().Title("Cache dir").Description("Optional: keep fetched pages here.").Value(&state.cacheDir),
	).Title("Network & Browser")
}

func buildHarvestGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Sitemap URL").Description("Optional: also crawl the pages of a sitemap.").Value(&state.sitemap),
		huh.NewInput().Title("Max Pages").Description("Limit pages crawled.").Value(&state.maxPagesStr).
			Validate(validateIntString(1, 100000)),
		huh.NewInput().Title("Crawl Depth").Description("Start page is depth 1.").Value(&state.depthStr).
			Validate(validateIntString(1, 100)),
		huh.NewInput().Title("Link filter").Description("Regular expression links must match.").Placeholder("/stats/").Value(&state.match),
	).Title("Harvest")
}

func buildFixtureGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Fixtures dir").Value(&state.fixturesDir),
		huh.NewInput().Title("Parallel fixtures").Value(&state.parallelStr).
			Validate(validateIntString(1, 256)),
	).Title("Fixtures")
}

func buildFinishGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().Title("Action").Value(&state.finalAction).Options(
			huh.NewOption("Only save config", "save_only"),
			huh.NewOption("Save config and dump", "save_and_run"),
			huh.NewOption("Dump without saving", "run"),
		),
		huh.NewInput().Title("Config path").
			Description("Path for 'Save' actions.").
			Value(&state.configPath).
			Validate(func(s string) error {
				if state.finalAction == "run" || state.overwrite {
					return nil
				}
				return validateNewFilename(s)
			}),
	).Title("Finish")
}

func buildResult(state *formState) (Result, error) {
	tableIndex, err := parseNonNegativeInt(state.tableIndexStr, "table index must be an integer >= 0")
	if err != nil {
		return Result{}, err
	}
	timeoutSec, err := parsePositiveInt(state.timeoutSecStr, "timeout must be a positive integer")
	if err != nil {
		return Result{}, err
	}
	rateLimit, err := parseNonNegativeFloat(state.rateLimitStr, "rate limit must be a number >= 0")
	if err != nil {
		return Result{}, err
	}
	parallel, err := parsePositiveInt(state.parallelStr, "parallel must be a positive integer")
	if err != nil {
		return Result{}, err
	}
	depth, err := parsePositiveInt(state.depthStr, "crawl depth must be a positive integer")
	if err != nil {
		return Result{}, err
	}
	maxPages, err := parsePositiveInt(state.maxPagesStr, "max pages must be a positive integer")
	if err != nil {
		return Result{}, err
	}

	cfg := state.base
	cfg.Source = strings.TrimSpace(state.source)
	cfg.Selector = strings.TrimSpace(state.selector)
	cfg.Exclude = strings.TrimSpace(state.exclude)
	cfg.TableIndex = tableIndex
	cfg.Format = state.format
	cfg.Section = state.section
	cfg.NullText = state.nullText
	cfg.Mode = state.mode
	cfg.TimeoutSeconds = timeoutSec
	cfg.RateLimitPerSecond = rateLimit
	cfg.UserAgent = strings.TrimSpace(state.userAgent)
	cfg.WaitForSelector = strings.TrimSpace(state.waitFor)
	cfg.Headless = state.headless
	cfg.CacheDir = strings.TrimSpace(state.cacheDir)
	cfg.Depth = depth
	cfg.MaxPages = maxPages
	cfg.Match = strings.TrimSpace(state.match)
	cfg.Sitemap = strings.TrimSpace(state.sitemap)
	cfg.FixturesDir = strings.TrimSpace(state.fixturesDir)
	cfg.Parallel = parallel

	res := Result{Config: cfg, ConfigPath: ensureYAMLExtension(strings.TrimSpace(state.configPath))}
	switch state.finalAction {
	case "run":
		res.RunNow = true
	case "save_and_run":
		res.RunNow = true
		res.SaveConfig = true
	case "save_only":
		res.SaveConfig = true
	}

	if res.SaveConfig {
		if err := writeConfig(res.ConfigPath, cfg); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func writeConfig(path string, cfg config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0600)
}

func parsePositiveInt(s, errMsg string) (int, error) {
	val, err := parseInt(s)
	if err != nil || val <= 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseNonNegativeInt(s, errMsg string) (int, error) {
	val, err := parseInt(s)
	if err != nil || val < 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseNonNegativeFloat(s, errMsg string) (float64, error) {
	val, err := parseFloat(s)
	if err != nil || val < 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func validateIntString(minVal, maxVal int) func(string) error {
	return func(s string) error {
		v, err := parseInt(s)
		if err != nil {
			return errors.New("must be an integer")
		}
		if v < minVal || v > maxVal {
			return fmt.Errorf("must be between %d and %d", minVal, maxVal)
		}
		return nil
	}
}

func validateNewFilename(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.ContainsAny(s, `\:*?"<>|`) {
		return errors.New("invalid characters")
	}
	if _, err := os.Stat(ensureYAMLExtension(s)); err == nil {
		return errors.New("file already exists")
	}
	return nil
}

func ensureYAMLExtension(s string) string {
	if strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml") {
		return s
	}
	return s + ".yaml"
}

func validateFloatString(minVal, maxVal float64) func(string) error {
	return func(s string) error {
		v, err := parseFloat(s)
		if err != nil {
			return errors.New("must be a number")
		}
		if v < minVal || v > maxVal {
			return fmt.Errorf("must be between %.2f and %.2f", minVal, maxVal)
		}
		return nil
	}
}
