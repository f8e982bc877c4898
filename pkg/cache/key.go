package cache

import (
	"strings"
)

// Partition names.
const (
	PartitionProducts   = "products"
	PartitionCategories = "categories"
	PartitionBrands     = "brands"
	PartitionCart       = "cart"
	PartitionOrders     = "orders"
)

// keyPrefix namespaces every key this package writes.
const keyPrefix = "neostore"

// ProductPartition returns the partition holding a single product.
func ProductPartition(id string) string {
	return "product:" + id
}

// Key identifies one cached response.
type Key struct {
	// Partition is the logical resource the response belongs to
	Partition string

	// ID distinguishes entries within a partition (e.g. a descriptor key).
	// Singleton resources leave it empty.
	ID string
}

// String generates a deterministic key string.
// Format: neostore:{partition}:id
//
// Example:
//
//	neostore:{products}:limit=12&page=1&sort=-createdAt
func (k Key) String() string {
	return partitionPrefix(k.Partition) + k.ID
}

// partitionPrefix is the prefix shared by all keys of a partition. The
// braces keep "product:1" from prefixing "product:12".
func partitionPrefix(partition string) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(":{")
	b.WriteString(partition)
	b.WriteString("}:")
	return b.String()
}
