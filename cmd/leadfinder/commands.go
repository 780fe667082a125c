package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"leadfinder/cmd/internal/console"
	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/leads"
	"leadfinder/cmd/internal/domain/scoring"
	"leadfinder/cmd/internal/domain/sqlite/repository"
	"leadfinder/cmd/internal/http/handler"
	"leadfinder/cmd/internal/service"
	"leadfinder/cmd/internal/service/jobs"
	"leadfinder/cmd/internal/utils"
)

const (
	topLeadsShown    = 10
	shutdownTimeout  = 10 * time.Second
	aiDisabledNotice = "AI features are disabled. Configure your OpenAI API key to use this feature."
)

var errUsage = errors.New("invalid usage")

type command struct {
	name string
	// local commands run without configuration or database.
	local bool
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "", run: runWelcome},
	{name: "dashboard", run: runDashboard},
	{name: "find", run: runFind},
	{name: "ai-find", run: runAIFind},
	{name: "research", run: runResearch},
	{name: "sources", run: runSources},
	{name: "market", run: runMarket},
	{name: "list", run: runList},
	{name: "export", run: runExport},
	{name: "view", run: runView},
	{name: "outreach", run: runOutreach},
	{name: "rescore", run: runRescore},
	{name: "cache", run: runCache},
	{name: "serve", run: runServe},
	{name: "help", local: true, run: runHelp},
	{name: "-h", local: true, run: runHelp},
	{name: "--help", local: true, run: runHelp},
}

var usages = map[string]string{
	"dashboard": "dashboard",
	"find":      "find CITY STATE [--category TEXT] [--source all|yellowpages|googlemaps] [--count N] [--details]",
	"ai-find":   "ai-find CITY STATE [--industry TEXT] [--market]",
	"research":  "research NAME CITY STATE [--outreach]",
	"sources":   "sources CITY STATE",
	"market":    "market CITY STATE",
	"list":      "list [--limit N] [--city TEXT] [--state XX] [--category TEXT] [--min-score N]",
	"export":    "export [--format csv|hubspot] [--city TEXT] [--state XX] [--min-score N] [--limit N]",
	"view":      "view ID [--outreach]",
	"outreach":  "outreach [--id ID] [--count N] [--min-score N] [--export]",
	"rescore":   "rescore [--profile generic|webscrape|maps|ailead] [--id ID]",
	"cache":     "cache clear [KEY] | cache prune",
	"serve":     "serve [--addr HOST:PORT]",
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// parseArgs lets flags and positional arguments be interleaved,
// e.g. "find Dayton OH --count 5" as well as "find --count 5 Dayton OH".
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, errUsage
		}

		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// expectArgs parses args and checks the positional count.
func expectArgs(a *app, fs *flag.FlagSet, args []string, want int) ([]string, error) {
	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}

	if len(positional) != want {
		a.out.Warn("Usage: leadfinder %s", usages[fs.Name()])
		return nil, errUsage
	}
	return positional, nil
}

func parseLocation(city, state string) (leads.Location, error) {
	city, state = strings.TrimSpace(city), strings.ToUpper(strings.TrimSpace(state))
	if city == "" {
		return leads.Location{}, errors.New("city must not be empty")
	}
	if !utils.IsStateCode(state) {
		return leads.Location{}, fmt.Errorf("state %q must be a two letter code", state)
	}
	return leads.Location{City: city, State: state}, nil
}

func runWelcome(_ context.Context, a *app, _ []string) error {
	a.out.Welcome(version, a.cfg.AIEnabled())
	return nil
}

func runDashboard(_ context.Context, a *app, args []string) error {
	if _, err := expectArgs(a, newFlagSet("dashboard"), args, 0); err != nil {
		return err
	}

	stats, err := a.leads.Stats()
	if err != nil {
		return fmt.Errorf("load statistics: %w", err)
	}
	a.out.Dashboard(stats, a.cfg.AIEnabled())
	return nil
}

func runFind(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("find")
	category := fs.String("category", "", "business category to search")
	source := fs.String("source", service.SourceAll, "data source: all, yellowpages or googlemaps")
	count := fs.Int("count", 20, "maximum number of leads per source")
	details := fs.Bool("details", false, "fetch detail pages and run AI analysis")

	pos, err := expectArgs(a, fs, args, 2)
	if err != nil {
		return err
	}

	loc, err := parseLocation(pos[0], pos[1])
	if err != nil {
		return err
	}

	names, err := service.SourceNames(*source)
	if err != nil {
		return err
	}

	a.out.Step("Finding leads in %s...", loc)
	a.out.Info("Searching %s", strings.Join(names, " and "))
	if *details && a.ai.Enabled() {
		a.out.Warn("Leads will be analyzed with AI after their details are fetched.")
	}

	companies, err := a.finder.Find(ctx, service.FindRequest{
		Location: loc,
		Category: *category,
		Source:   *source,
		Count:    *count,
		Details:  *details,
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		if len(companies) == 0 {
			return err
		}
		a.out.Warn("Some sources failed: %v", err)
	}

	if len(companies) == 0 {
		a.out.Warn("No leads found in %s.", loc)
		return nil
	}

	a.out.Success("Found %d potential leads", len(companies))
	a.out.Leads("Top Leads", companies[:min(topLeadsShown, len(companies))], console.TopColumns)
	return nil
}

func runAIFind(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("ai-find")
	industry := fs.String("industry", "", "industry to focus on")
	market := fs.Bool("market", false, "also analyze the market potential of the area")

	pos, err := expectArgs(a, fs, args, 2)
	if err != nil {
		return err
	}

	loc, err := parseLocation(pos[0], pos[1])
	if err != nil {
		return err
	}

	if !a.ai.Enabled() {
		a.out.Warn(aiDisabledNotice)
		return nil
	}

	a.out.Step("Using AI to find leads in %s...", loc)
	found, err := a.ai.FindPotentialLeads(ctx, loc, *industry)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		a.out.Warn("No leads were generated by AI. Try a different location or industry.")
		return nil
	}

	a.out.Success("AI generated %d potential leads", len(found))
	a.out.Leads("AI-Generated Leads for "+loc.String(), found, console.AIColumns)

	if *market {
		return analyzeMarket(ctx, a, loc)
	}
	return nil
}

func runResearch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("research")
	outreach := fs.Bool("outreach", false, "draft an outreach email for the company")

	pos, err := expectArgs(a, fs, args, 3)
	if err != nil {
		return err
	}

	loc, err := parseLocation(pos[1], pos[2])
	if err != nil {
		return err
	}

	if !a.ai.Enabled() {
		a.out.Warn(aiDisabledNotice)
		return nil
	}

	a.out.Step("Researching %s in %s...", pos[0], loc)
	company, err := a.ai.ResearchCompany(ctx, pos[0], loc)
	if err != nil {
		return err
	}
	if company == nil {
		a.out.Warn("Could not research company: %s", pos[0])
		return nil
	}

	a.out.Lead(company)
	if *outreach {
		return draftOutreach(ctx, a, []*entity.Company{company}, false)
	}
	return nil
}

func runSources(ctx context.Context, a *app, args []string) error {
	pos, err := expectArgs(a, newFlagSet("sources"), args, 2)
	if err != nil {
		return err
	}

	loc, err := parseLocation(pos[0], pos[1])
	if err != nil {
		return err
	}

	if !a.ai.Enabled() {
		a.out.Warn(aiDisabledNotice)
		return nil
	}

	a.out.Step("Identifying lead sources for %s...", loc)
	sources, err := a.ai.IdentifyLeadSources(ctx, loc)
	if err != nil {
		return err
	}
	a.out.Panel("Lead Sources for "+loc.String(), sources)
	return nil
}

func runMarket(ctx context.Context, a *app, args []string) error {
	pos, err := expectArgs(a, newFlagSet("market"), args, 2)
	if err != nil {
		return err
	}

	loc, err := parseLocation(pos[0], pos[1])
	if err != nil {
		return err
	}

	if !a.ai.Enabled() {
		a.out.Warn(aiDisabledNotice)
		return nil
	}
	return analyzeMarket(ctx, a, loc)
}

func analyzeMarket(ctx context.Context, a *app, loc leads.Location) error {
	a.out.Step("Analyzing market potential in %s...", loc)
	analysis, err := a.ai.AnalyzeMarket(ctx, loc)
	if err != nil {
		return err
	}
	a.out.Panel("Market Analysis: "+loc.String(), analysis)
	return nil
}

// filterFlags registers the lead filter flags shared by list and export.
func filterFlags(fs *flag.FlagSet, f *repository.CompanyFilter, limit, minScore int) {
	fs.IntVar(&f.Limit, "limit", limit, "maximum number of leads")
	fs.StringVar(&f.City, "city", "", "filter by city")
	fs.StringVar(&f.State, "state", "", "filter by state")
	fs.IntVar(&f.MinScore, "min-score", minScore, "minimum lead score")
}

func runList(_ context.Context, a *app, args []string) error {
	var filter repository.CompanyFilter
	fs := newFlagSet("list")
	filterFlags(fs, &filter, 10, 0)
	fs.StringVar(&filter.Category, "category", "", "filter by category")

	if _, err := expectArgs(a, fs, args, 0); err != nil {
		return err
	}
	filter.State = strings.ToUpper(filter.State)

	companies, err := a.leads.List(filter)
	if err != nil {
		return fmt.Errorf("list leads: %w", err)
	}

	if len(companies) == 0 {
		a.out.Warn("No companies found matching criteria.")
		return nil
	}

	countFilter := filter
	countFilter.Limit, countFilter.Offset = 0, 0
	total, err := a.leads.Companies.Count(countFilter)
	if err != nil {
		return fmt.Errorf("count leads: %w", err)
	}

	a.out.Leads(fmt.Sprintf("Companies (Total: %s)", humanize.Comma(total)), companies, console.ListColumns)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	var filter repository.CompanyFilter
	fs := newFlagSet("export")
	format := fs.String("format", "csv", "export format: csv or hubspot")
	filterFlags(fs, &filter, 100, 50)

	if _, err := expectArgs(a, fs, args, 0); err != nil {
		return err
	}
	filter.State = strings.ToUpper(filter.State)

	kind := strings.ToLower(*format)
	if kind != "csv" && kind != "hubspot" {
		return fmt.Errorf("unknown export format %q, expected csv or hubspot", *format)
	}

	a.out.Step("Exporting leads to %s format...", kind)
	companies, err := a.leads.List(filter)
	if err != nil {
		return fmt.Errorf("list leads: %w", err)
	}

	if len(companies) == 0 {
		a.out.Warn("No companies found matching criteria.")
		return nil
	}

	var res *service.ExportResult
	label := "standard"
	if kind == "hubspot" {
		label = "HubSpot"
		res, err = a.exporter.ExportHubSpot(ctx, companies)
	} else {
		res, err = a.exporter.ExportCSV(ctx, companies)
	}
	if err != nil {
		a.out.Failure("Failed to export companies")
		return err
	}

	a.out.Success("Exported %d companies to %s CSV: %s", res.Count, label, res.Path)
	if res.RemoteKey != "" {
		a.out.Info("Uploaded to s3://%s/%s", a.cfg.Export.S3Bucket, res.RemoteKey)
	}
	return nil
}

func runView(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("view")
	outreach := fs.Bool("outreach", false, "draft an outreach email for the company")

	pos, err := expectArgs(a, fs, args, 1)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(pos[0], 10, 64)
	if err != nil {
		return fmt.Errorf("lead ID %q is not a number", pos[0])
	}

	company, err := a.leads.Lead(id)
	if errors.Is(err, service.ErrLeadNotFound) {
		a.out.Warn("Company with ID %d not found.", id)
		return nil
	}
	if err != nil {
		return err
	}

	a.out.Lead(company)
	if *outreach {
		if !a.ai.Enabled() {
			a.out.Warn(aiDisabledNotice)
			return nil
		}
		return draftOutreach(ctx, a, []*entity.Company{company}, false)
	}
	return nil
}

func runOutreach(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("outreach")
	id := fs.Int64("id", 0, "draft for a single lead")
	count := fs.Int("count", 5, "number of emails to draft")
	minScore := fs.Int("min-score", 70, "minimum lead score")
	export := fs.Bool("export", false, "write the emails to a file instead of printing them")

	if _, err := expectArgs(a, fs, args, 0); err != nil {
		return err
	}

	if !a.ai.Enabled() {
		a.out.Warn(aiDisabledNotice)
		return nil
	}

	var companies []*entity.Company
	if *id > 0 {
		company, err := a.leads.Lead(*id)
		if errors.Is(err, service.ErrLeadNotFound) {
			a.out.Warn("Company with ID %d not found.", *id)
			return nil
		}
		if err != nil {
			return err
		}
		companies = []*entity.Company{company}
	} else {
		var err error
		companies, err = a.leads.List(repository.CompanyFilter{MinScore: *minScore, Limit: *count})
		if err != nil {
			return fmt.Errorf("list leads: %w", err)
		}
		if len(companies) == 0 {
			a.out.Warn("No companies found with lead score >= %d.", *minScore)
			return nil
		}
	}
	return draftOutreach(ctx, a, companies, *export)
}

func draftOutreach(ctx context.Context, a *app, companies []*entity.Company, export bool) error {
	a.out.Step("Generating outreach emails for %d companies...", len(companies))
	emails, err := a.ai.GenerateOutreachBatch(ctx, companies)
	if err != nil {
		return err
	}

	if !export {
		a.out.Emails(companies, emails)
		return nil
	}

	res, err := a.exporter.ExportOutreach(ctx, companies, emails)
	if err != nil {
		a.out.Failure("Failed to export outreach emails")
		return err
	}
	a.out.Success("Exported %d outreach emails: %s", res.Count, res.Path)
	return nil
}

func runRescore(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("rescore")
	profileName := fs.String("profile", scoring.Generic.Name, "scoring profile: "+strings.Join(scoring.Names(), ", "))
	id := fs.Int64("id", 0, "rescore a single lead")

	if _, err := expectArgs(a, fs, args, 0); err != nil {
		return err
	}

	profile, ok := scoring.Lookup(*profileName)
	if !ok {
		return fmt.Errorf("unknown scoring profile %q, expected one of %s", *profileName, strings.Join(scoring.Names(), ", "))
	}

	changed, err := a.leads.Rescore(profile, *id)
	if errors.Is(err, service.ErrLeadNotFound) {
		a.out.Warn("Company with ID %d not found.", *id)
		return nil
	}
	if err != nil {
		return err
	}

	a.out.Success("Rescored leads with the %s profile, %d scores changed", profile.Name, changed)
	return nil
}

func runCache(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("cache"), args)
	if err != nil {
		return err
	}

	if len(pos) == 0 || len(pos) > 2 || (pos[0] == "prune" && len(pos) != 1) {
		a.out.Warn("Usage: leadfinder %s", usages["cache"])
		return errUsage
	}

	if !a.cache.Enabled() {
		a.out.Warn("Cache is disabled.")
		return nil
	}

	switch pos[0] {
	case "clear":
		key := ""
		if len(pos) == 2 {
			key = pos[1]
		}

		resp, apierr := a.caches.ClearCache(ctx, key)
		if apierr != nil {
			return errors.New("failed to clear the cache")
		}

		if resp.Key == "" {
			a.out.Success("Cache cleared")
		} else {
			a.out.Success("Cleared cache entry %s", resp.Key)
		}
		return nil

	case "prune":
		n, err := a.cache.Prune(ctx)
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		a.out.Success("Removed %s expired cache entries", humanize.Comma(n))
		return nil

	default:
		a.out.Warn("Usage: leadfinder %s", usages["cache"])
		return errUsage
	}
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", a.cfg.ServeAddr, "listen address")

	if _, err := expectArgs(a, fs, args, 0); err != nil {
		return err
	}

	e := handler.NewServer(a.leads, a.caches, a.logger)
	go jobs.NewCacheCleaner(a.cache, jobs.CleanInterval, a.logger).Start(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(*addr) }()
	a.out.Success("Serving the lead API on %s", *addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func runHelp(_ context.Context, a *app, _ []string) error {
	printHelp(a.out)
	return nil
}

const helpText = `Basic Commands:
  dashboard                 Show dashboard with statistics
  list                      List companies in the database
    --limit N               Maximum number of leads to list (10)
    --city, --state, --category, --min-score
  view ID                   View detailed information about a company
    --outreach              Draft an outreach email for it
  rescore                   Recompute stored lead scores
    --profile NAME          generic, webscrape, maps or ailead (generic)
    --id ID                 Only this lead
  help                      Show this help message

Lead Finding:
  find CITY STATE           Find leads in a city using web scraping
    --category TEXT         Business category to search
    --source SOURCE         yellowpages, googlemaps or all (all)
    --count N               Maximum number of leads per source (20)
    --details               Fetch detail pages and analyze leads with AI

AI Features:
  ai-find CITY STATE        Use AI to identify potential leads
    --industry TEXT         Specific industry to focus on
    --market                Also analyze the market potential
  research NAME CITY STATE  Use AI to research a specific company
    --outreach              Draft an outreach email for it
  sources CITY STATE        Identify lead sources for a city
  market CITY STATE         Analyze market potential for a city
  outreach                  Generate outreach emails for leads
    --id ID                 Generate for a specific lead
    --count N               Number of emails to generate (5)
    --min-score N           Minimum lead score (70)
    --export                Export emails to a file

Export:
  export                    Export leads to CSV
    --format FORMAT         csv or hubspot (csv)
    --city, --state         Filter by location
    --min-score N           Minimum lead score (50)
    --limit N               Maximum number of leads to export (100)

Maintenance:
  cache clear [KEY]         Drop one cache entry or the whole cache
  cache prune               Drop expired cache entries
  serve                     Serve the JSON API
    --addr HOST:PORT        Listen address`

func printHelp(out *console.Console) {
	out.Panel("LeadFinder Help", helpText)
}
