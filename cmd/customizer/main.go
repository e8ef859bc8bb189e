package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/standee-works/customizer/internal/customize"
	"github.com/standee-works/customizer/internal/di"
	"github.com/standee-works/customizer/internal/domain"
	"github.com/standee-works/customizer/internal/platform/config"
	"github.com/standee-works/customizer/internal/platform/observability"
	"github.com/standee-works/customizer/internal/services"
)

func main() {
	app := kingpin.New("customizer", "Order customization engine for printed and NFC products")
	envFile := app.Flag("env-file", "Path to a dotenv file with configuration overrides").String()

	resolveCmd := app.Command("resolve", "Resolve a storefront product name against the catalog")
	resolveName := resolveCmd.Arg("name", "Storefront product name").Required().String()

	catalogCmd := app.Command("catalog", "List every customization catalog entry")

	ordersCmd := app.Command("orders", "List a customer's orders split into open and submitted")
	ordersPhone := ordersCmd.Flag("phone", "Customer phone number").Required().String()

	showCmd := app.Command("show", "Start an editing session for an order and print its products")
	showOrder := showCmd.Arg("order", "Storefront order number").Required().String()

	submitCmd := app.Command("submit", "Apply a customization document to an order and submit it")
	submitOrder := submitCmd.Flag("order", "Storefront order number").Required().String()
	submitFile := submitCmd.Flag("file", "Path to the customization JSON document").Required().String()

	checkCmd := app.Command("check", "Probe backing services and report readiness")

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	var configOpts []config.Option
	if *envFile != "" {
		configOpts = append(configOpts, config.WithEnvFile(*envFile))
	}
	cfg, err := config.Load(configOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise dependencies: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := container.Close(context.Background()); closeErr != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", closeErr)
		}
	}()

	logger := container.Logger.Named("cli")
	ctx = observability.WithLogger(ctx, logger)

	switch command {
	case resolveCmd.FullCommand():
		err = runResolve(ctx, container.Services.Catalog, *resolveName)
	case catalogCmd.FullCommand():
		err = runCatalog(ctx, container)
	case ordersCmd.FullCommand():
		err = runOrders(ctx, container.Services.Sessions, *ordersPhone)
	case showCmd.FullCommand():
		err = runShow(ctx, container.Services.Sessions, *showOrder, cfg.Support.WhatsAppNumber)
	case submitCmd.FullCommand():
		err = runSubmit(ctx, container.Services.Sessions, *submitOrder, *submitFile)
	case checkCmd.FullCommand():
		err = runCheck(ctx, container.Services.System)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

func runResolve(ctx context.Context, catalog services.CatalogService, name string) error {
	resolution, err := catalog.Resolve(ctx, name)
	if err != nil {
		return err
	}
	printTemplate(resolution.Template, string(resolution.Match))
	for _, child := range resolution.Template.Children {
		printTemplate(child, "")
	}
	return nil
}

func printTemplate(t domain.ProductTemplate, match string) {
	indent := ""
	if t.ParentBundle != "" {
		indent = "  "
	}
	fmt.Printf("%s%s\n", indent, t.Name)
	if match != "" {
		fmt.Printf("%s  match:    %s\n", indent, match)
	}
	fmt.Printf("%s  category: %s\n", indent, t.Category)
	if t.IsBundle() {
		fmt.Printf("%s  children: %d\n", indent, len(t.Children))
		return
	}
	fmt.Printf("%s  slots:    %d\n", indent, t.SlotCount)
	fmt.Printf("%s  logo:     required=%t\n", indent, t.LogoRequired)
}

func runCatalog(ctx context.Context, container *di.Container) error {
	entries, err := container.Repositories.Catalog().ListEntries(ctx)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, entry := range entries {
		kind := fmt.Sprintf("%d slots", entry.SlotCount)
		if entry.IsBundle() {
			kind = fmt.Sprintf("bundle of %d", len(entry.Children))
		} else if entry.IsBusinessCard() {
			kind = "card"
		}
		fmt.Printf("%-45s %-12s %s\n", entry.Name, entry.Category, kind)
	}
	fmt.Printf("%d entries\n", len(entries))
	return nil
}

func runOrders(ctx context.Context, sessions services.SessionService, phone string) error {
	result, err := sessions.OrdersByPhone(ctx, phone)
	if err != nil {
		return err
	}
	fmt.Printf("orders for %s\n", result.Phone)
	printOrderList("open", result.Open)
	printOrderList("submitted", result.Submitted)
	return nil
}

func printOrderList(heading string, orders []domain.CustomerOrder) {
	fmt.Printf("%s (%d)\n", heading, len(orders))
	for _, order := range orders {
		fmt.Printf("  %-10s %-24s qty=%-3d %d %s\n",
			order.OrderNumber, strings.Join(order.ProductNames, ", "),
			order.Quantity, order.TotalPrice, order.Currency)
	}
}

func runShow(ctx context.Context, sessions services.SessionService, orderNumber, supportNumber string) error {
	session, err := sessions.Start(ctx, orderNumber)
	if err != nil {
		return err
	}
	fmt.Printf("order %s, quantity %d\n", session.Order.OrderNumber, session.Order.Quantity)
	if session.BusinessName != "" {
		fmt.Printf("business: %s\n", session.BusinessName)
	}
	for i, product := range session.Products {
		printSessionProduct(product, fmt.Sprintf("%d", i+1), "")
	}
	if len(session.Manual) > 0 {
		for _, name := range session.Manual {
			fmt.Printf("manual:   %s (no catalog entry)\n", name)
		}
		fmt.Printf("contact support on WhatsApp at %s for manual products\n", supportNumber)
	}
	return nil
}

func printSessionProduct(product *services.SessionProduct, position, indent string) {
	fmt.Printf("%s%s. %s (%s match)\n", indent, position, product.Template.Name, product.Match)
	if len(product.Children) > 0 {
		for j, child := range product.Children {
			printSessionProduct(child, fmt.Sprintf("%s.%d", position, j+1), indent+"  ")
		}
		return
	}
	if product.State == nil {
		return
	}
	fmt.Printf("%s   mode=%s slots=%d quantity=%d\n",
		indent, product.State.Mode, product.Template.SlotCount, product.State.Quantity)
	if product.State.Mode == customize.ModeGrouped {
		for _, group := range product.State.Groups {
			fmt.Printf("%s   group %q units=%v\n", indent, group.Label, group.Members)
		}
	}
}

// customizationDoc is the on-disk document the submit command applies to a
// freshly started session. Products are matched by position against the
// session's resolved products.
type customizationDoc struct {
	BusinessName  string       `json:"business_name,omitempty"`
	CustomerNames []string     `json:"customer_names,omitempty"`
	Products      []productDoc `json:"products"`
}

type productDoc struct {
	Mode     string       `json:"mode,omitempty"`
	Same     *blockDoc    `json:"same,omitempty"`
	Items    []blockDoc   `json:"items,omitempty"`
	Groups   []groupDoc   `json:"groups,omitempty"`
	Children []productDoc `json:"children,omitempty"`
}

type groupDoc struct {
	Label string    `json:"label,omitempty"`
	Units []int     `json:"units,omitempty"`
	Block *blockDoc `json:"block,omitempty"`
}

// blockDoc encodes one block's edits. Icons are slot strings: empty for an
// untouched slot, a known platform tag, or free text for a custom slot.
// Logo and UPI accept either a data URI or an already hosted URL.
type blockDoc struct {
	Icons []string `json:"icons,omitempty"`
	Logo  string   `json:"logo,omitempty"`
	UPI   string   `json:"upi,omitempty"`
}

func runSubmit(ctx context.Context, sessions services.SessionService, orderNumber, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	var doc customizationDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	session, err := sessions.Start(ctx, orderNumber)
	if err != nil {
		return err
	}
	if err := applyDocument(session, doc); err != nil {
		return err
	}

	receipt, err := sessions.Submit(ctx, session)
	if err != nil {
		var vErr *customize.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Errorf("customization incomplete: %w", vErr)
		}
		return err
	}

	fmt.Printf("order %s submitted with %d line items at %s\n",
		receipt.OrderNumber, receipt.LineItems, receipt.SubmittedAt.Format("2006-01-02 15:04:05 MST"))
	for _, name := range receipt.ManualProducts {
		fmt.Printf("manual follow-up: %s\n", name)
	}
	return nil
}

func applyDocument(session *services.Session, doc customizationDoc) error {
	if doc.BusinessName != "" {
		session.BusinessName = doc.BusinessName
	}
	for i, name := range doc.CustomerNames {
		if err := session.SetCustomerName(i, name); err != nil {
			return fmt.Errorf("customer name %d: %w", i+1, err)
		}
	}
	if len(doc.Products) != len(session.Products) {
		return fmt.Errorf("document has %d products, order resolved %d", len(doc.Products), len(session.Products))
	}
	for i, pd := range doc.Products {
		if err := applyProduct(session, i, pd); err != nil {
			return fmt.Errorf("product %d: %w", i+1, err)
		}
	}
	return nil
}

func applyProduct(session *services.Session, index int, pd productDoc) error {
	product := session.Products[index]
	if len(product.Children) > 0 {
		if len(pd.Children) != len(product.Children) {
			return fmt.Errorf("bundle has %d children, document gives %d", len(product.Children), len(pd.Children))
		}
		for ci, cd := range pd.Children {
			state, err := session.StateAt(index, ci)
			if err != nil {
				return err
			}
			if err := applyState(state, cd); err != nil {
				return fmt.Errorf("child %d: %w", ci+1, err)
			}
		}
		return nil
	}

	state, err := session.StateAt(index, -1)
	if err != nil {
		return err
	}
	return applyState(state, pd)
}

func applyState(state *customize.State, pd productDoc) error {
	if pd.Mode != "" {
		if err := state.SetMode(customize.Mode(pd.Mode)); err != nil {
			return err
		}
	}
	if pd.Same != nil {
		state.UpdateSame(blockPatch(*pd.Same))
	}
	for i, bd := range pd.Items {
		if err := state.UpdateItem(i, blockPatch(bd)); err != nil {
			return err
		}
	}
	if len(pd.Groups) == 0 {
		return nil
	}

	sizes := make([]int, len(pd.Groups))
	explicit := false
	for i, gd := range pd.Groups {
		sizes[i] = len(gd.Units)
		if sizes[i] > 0 {
			explicit = true
		}
	}
	if explicit {
		state.ApplyPattern(sizes)
		// Contiguous assignment first, then move every listed unit into
		// its documented group so arbitrary memberships round-trip.
		for gi, gd := range pd.Groups {
			for _, unit := range gd.Units {
				if err := state.Reassign(unit, gi); err != nil {
					return fmt.Errorf("group %d unit %d: %w", gi+1, unit, err)
				}
			}
		}
	}
	for gi, gd := range pd.Groups {
		if gd.Label != "" {
			if err := state.RenameGroup(gi, gd.Label); err != nil {
				return err
			}
		}
		if gd.Block != nil {
			if err := state.UpdateGroup(gi, blockPatch(*gd.Block)); err != nil {
				return err
			}
		}
	}
	return nil
}

func blockPatch(bd blockDoc) customize.BlockPatch {
	var patch customize.BlockPatch
	if len(bd.Icons) > 0 {
		patch.Icons = make([]customize.Slot, len(bd.Icons))
		for i, raw := range bd.Icons {
			patch.Icons[i] = parseSlot(raw)
		}
	}
	if bd.Logo != "" {
		asset := assetFromRef(bd.Logo)
		patch.Logo = &asset
	}
	if bd.UPI != "" {
		asset := assetFromRef(bd.UPI)
		patch.UPI = &asset
	}
	return patch
}

func parseSlot(raw string) customize.Slot {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return customize.EmptySlot()
	case customize.IsKnownTag(trimmed):
		return customize.KnownSlot(trimmed)
	default:
		return customize.CustomSlot(trimmed)
	}
}

func assetFromRef(ref string) customize.Asset {
	if strings.HasPrefix(ref, "data:") {
		return customize.Asset{DataURI: ref}
	}
	return customize.Asset{URL: ref}
}

func runCheck(ctx context.Context, system services.SystemService) error {
	report, err := system.HealthReport(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check := report.Checks[name]
		line := fmt.Sprintf("%-10s %-9s %s", name, check.Status, check.Latency.Round(time.Millisecond))
		if check.Detail != "" {
			line += "  " + check.Detail
		}
		fmt.Println(line)
	}
	fmt.Printf("overall: %s\n", report.Status)
	if report.Status == domain.HealthStatusError {
		return errors.New("one or more dependencies are unreachable")
	}
	return nil
}
