package stac

import (
	"fmt"
	"strings"
)

// Layout is the deterministic mapping from records to relative paths:
// the collection at a fixed root document name, items keyed by identifier
// under an items subdirectory. Assigned once, after all items are built,
// before persistence.
type Layout struct {
	CollectionPath string // relative path of the collection document
	ItemDir        string // directory holding item documents
}

// DefaultLayout matches the published catalog shape: collection.json at the
// root, items/<id>.json per item.
func DefaultLayout() Layout {
	return Layout{CollectionPath: "collection.json", ItemDir: "items"}
}

// ItemPath returns the relative document path for an item id.
func (l Layout) ItemPath(id string) string {
	return l.ItemDir + "/" + id + ".json"
}

// Apply resolves every href in the hierarchy to a concrete relative path.
// Must run before persistence: serialized documents may not carry unset
// links. Item links point back up with "../" since items live one directory
// below the collection document.
func (l Layout) Apply(c *Collection) error {
	c.SelfHref = l.CollectionPath

	for _, link := range c.Links {
		if link.Rel != RelItem {
			continue
		}
		if link.Target == nil {
			return fmt.Errorf("item link without a target on collection %q", c.ID)
		}
		link.Href = l.ItemPath(link.Target.ID)
	}
	c.Links = withSelf(c.Links, l.CollectionPath)

	up := upPath(l.ItemDir) + l.CollectionPath
	for _, item := range c.Items {
		item.SelfHref = l.ItemPath(item.ID)
		item.Links = []*Link{
			{Rel: RelSelf, Href: item.ID + ".json"},
			{Rel: RelRoot, Href: up, MediaType: "application/json"},
			{Rel: RelParent, Href: up, MediaType: "application/json"},
			{Rel: RelCollection, Href: up, MediaType: "application/json"},
		}
	}
	return nil
}

// withSelf prepends self and root links so each document can be read
// independently of any shared root catalog.
func withSelf(links []*Link, href string) []*Link {
	out := []*Link{
		{Rel: RelSelf, Href: href},
		{Rel: RelRoot, Href: href, MediaType: "application/json"},
	}
	return append(out, links...)
}

// upPath converts a directory like "items" into the "../" prefix needed to
// reach the catalog root from inside it.
func upPath(dir string) string {
	n := strings.Count(strings.Trim(dir, "/"), "/") + 1
	return strings.Repeat("../", n)
}
