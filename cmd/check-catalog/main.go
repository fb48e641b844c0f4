// Command check-catalog performs end-to-end integrity checks over a
// persisted catalog: document structure, field conformance, extent
// consistency, row-count accounting, and link/asset resolution.
//
// Usage:
//
//	go run ./cmd/check-catalog -root data/catalog
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hf-eolus/sar-catalog/internal/adapter/storage"
	"github.com/hf-eolus/sar-catalog/internal/config"
	"github.com/hf-eolus/sar-catalog/internal/stac"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	root := flag.String("root", "", "catalog root directory (holding collection.json)")
	flag.Parse()

	if *root == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*root); code != 0 {
		os.Exit(code)
	}
}

func run(root string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}
	store := storage.NewRouter(storage.S3Options{
		Endpoint: cfg.S3Endpoint,
		Region:   cfg.AWSRegion,
		Profile:  cfg.AWSProfile,
	})
	ctx := context.Background()

	fmt.Println("=== Catalog Integrity Validation ===")
	fmt.Println()

	collection, items, loadPhase := loadCatalog(ctx, store, root)

	phases := []*phase{loadPhase}
	if loadPhase.passed() {
		phases = append(phases,
			validateDocuments(collection, items),
			validateExtent(collection, items),
			validateRowCounts(collection, items),
			validateLinks(root, collection, items),
		)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Documents: 1 collection, %d items\n", len(items))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Load ──

func loadCatalog(ctx context.Context, store storage.Store, root string) (*stac.CollectionDocument, []*stac.ItemDocument, *phase) {
	p := &phase{name: "Phase 1: Document Structure"}

	data, err := store.Read(ctx, root+"/collection.json")
	if err != nil {
		p.errorf("read collection document: %v", err)
		return nil, nil, p
	}
	var collection stac.CollectionDocument
	if err := json.Unmarshal(data, &collection); err != nil {
		p.errorf("parse collection document: %v", err)
		return nil, nil, p
	}

	var items []*stac.ItemDocument
	for _, link := range collection.Links {
		if link.Rel != stac.RelItem {
			continue
		}
		if link.Href == "" {
			p.errorf("collection has an item link with empty href")
			continue
		}
		data, err := store.Read(ctx, root+"/"+link.Href)
		if err != nil {
			p.errorf("read item %s: %v", link.Href, err)
			continue
		}
		var item stac.ItemDocument
		if err := json.Unmarshal(data, &item); err != nil {
			p.errorf("parse item %s: %v", link.Href, err)
			continue
		}
		items = append(items, &item)
	}

	if len(items) == 0 {
		p.errorf("collection links no items")
	}
	return &collection, items, p
}

// ── Phase 2: Field conformance ──

func validateDocuments(c *stac.CollectionDocument, items []*stac.ItemDocument) *phase {
	p := &phase{name: "Phase 2: Field Conformance"}

	if c.Type != "Collection" {
		p.errorf("collection type is %q", c.Type)
	}
	if c.StacVersion != stac.Version {
		p.errorf("collection stac_version is %q, want %q", c.StacVersion, stac.Version)
	}
	if c.ID == "" {
		p.errorf("collection id is empty")
	}
	if c.Description == "" {
		p.errorf("collection description is empty")
	}
	if c.License == "" {
		p.errorf("collection license is empty")
	}
	if !contains(c.StacExtensions, stac.TableExtensionURI) {
		p.errorf("collection does not declare the table extension")
	}

	seen := map[string]bool{}
	for _, item := range items {
		checkItemFields(p, item)
		if seen[item.ID] {
			p.errorf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
	}
	return p
}

func checkItemFields(p *phase, item *stac.ItemDocument) {
	pf := func(format string, args ...any) {
		p.errorf("item %s: "+format, append([]any{item.ID}, args...)...)
	}

	if item.Type != "Feature" {
		pf("type is %q", item.Type)
	}
	if item.ID == "" {
		p.errorf("item with empty id")
	}
	if len(item.BBox) != 4 {
		pf("bbox has %d values", len(item.BBox))
	}
	if item.Geometry.Type != "Polygon" {
		pf("geometry type is %q", item.Geometry.Type)
	}
	for _, key := range []string{stac.PropDatetime, stac.PropStartDatetime, stac.PropEndDatetime} {
		s, ok := item.Properties[key].(string)
		if !ok {
			pf("missing %s property", key)
			continue
		}
		if _, err := stac.ParseRFC3339Z(s); err != nil {
			pf("%s: %v", key, err)
		}
	}
	if _, ok := item.Properties[stac.PropTableColumns]; !ok {
		pf("missing %s property", stac.PropTableColumns)
	}
	if _, ok := item.Assets["data"]; !ok {
		pf("missing data asset")
	}
}

// ── Phase 3: Extent consistency ──

func validateExtent(c *stac.CollectionDocument, items []*stac.ItemDocument) *phase {
	p := &phase{name: "Phase 3: Extent Consistency"}

	if len(c.Extent.Spatial.BBox) == 0 || len(c.Extent.Spatial.BBox[0]) != 4 {
		p.errorf("collection spatial extent is malformed")
		return p
	}
	bbox := c.Extent.Spatial.BBox[0]

	for _, item := range items {
		if len(item.BBox) != 4 {
			continue
		}
		if item.BBox[0] < bbox[0]-1e-9 || item.BBox[1] < bbox[1]-1e-9 ||
			item.BBox[2] > bbox[2]+1e-9 || item.BBox[3] > bbox[3]+1e-9 {
			p.errorf("item %s bbox %v escapes collection bbox %v", item.ID, item.BBox, bbox)
		}
	}

	if len(c.Extent.Temporal.Interval) == 0 || len(c.Extent.Temporal.Interval[0]) != 2 {
		p.errorf("collection temporal extent is malformed")
		return p
	}
	start, err1 := stac.ParseRFC3339Z(c.Extent.Temporal.Interval[0][0])
	end, err2 := stac.ParseRFC3339Z(c.Extent.Temporal.Interval[0][1])
	if err1 != nil || err2 != nil {
		p.errorf("collection temporal interval does not parse: %v %v", err1, err2)
		return p
	}
	for _, item := range items {
		s, okS := item.Properties[stac.PropStartDatetime].(string)
		e, okE := item.Properties[stac.PropEndDatetime].(string)
		if !okS || !okE {
			continue
		}
		itemStart, err1 := stac.ParseRFC3339Z(s)
		itemEnd, err2 := stac.ParseRFC3339Z(e)
		if err1 != nil || err2 != nil {
			continue
		}
		if itemStart.Before(start) || itemEnd.After(end) {
			p.errorf("item %s range [%s, %s] escapes collection interval", item.ID, s, e)
		}
	}
	return p
}

// ── Phase 4: Row counts ──

func validateRowCounts(c *stac.CollectionDocument, items []*stac.ItemDocument) *phase {
	p := &phase{name: "Phase 4: Row Count Accounting"}

	var sum float64
	for _, item := range items {
		n, ok := item.Properties[stac.PropTableRowCount].(float64)
		if !ok {
			p.errorf("item %s: missing %s", item.ID, stac.PropTableRowCount)
			continue
		}
		if n <= 0 || n != math.Trunc(n) {
			p.errorf("item %s: row_count %v is not a positive integer", item.ID, n)
		}
		sum += n
	}

	if len(c.Tables) == 0 {
		p.errorf("collection has no %s block", stac.PropTableTables)
		return p
	}
	for _, table := range c.Tables {
		if float64(table.RowCount) != sum {
			p.errorf("table %q row_count %d != item sum %v", table.Name, table.RowCount, sum)
		}
	}
	return p
}

// ── Phase 5: Links and assets ──

func validateLinks(root string, c *stac.CollectionDocument, items []*stac.ItemDocument) *phase {
	p := &phase{name: "Phase 5: Link & Asset Resolution"}

	for _, link := range c.Links {
		if link.Href == "" {
			p.errorf("collection link rel=%s has empty href", link.Rel)
		}
	}

	local := !strings.HasPrefix(root, storage.S3Scheme)
	for _, item := range items {
		for _, link := range item.Links {
			if link.Href == "" {
				p.errorf("item %s link rel=%s has empty href", item.ID, link.Rel)
			}
		}
		for name, asset := range item.Assets {
			if asset.Href == "" {
				p.errorf("item %s asset %s has empty href", item.ID, name)
				continue
			}
			if local {
				if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(asset.Href))); err != nil {
					p.errorf("item %s asset %s does not resolve: %v", item.ID, name, err)
				}
			}
		}
	}
	return p
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
