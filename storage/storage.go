/*
Package storage opens the stores an OME-Zarr hierarchy can live in and
decides whether a path names a Zarr hierarchy root.

Stores are opened by URL scheme: plain paths and "file://" use the local
filesystem, "s3://" and "gs://" cloud buckets, "mem://" named in-memory
buckets and "http://"/"https://" read-only web servers.  Additional schemes
can be added with RegisterScheme.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/janelia-flyem/omezarr/ngff"
)

// ErrUnsupportedScheme is returned for URLs with no registered opener.
var ErrUnsupportedScheme = errors.New("unsupported storage scheme")

// Store is a read-only key/value view of a Zarr hierarchy, where keys are
// "/"-separated paths relative to the hierarchy root.
type Store interface {
	// Get returns the value for the key or nil, nil if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists returns true if the key exists.
	Exists(ctx context.Context, key string) (bool, error)

	String() string

	Close() error
}

// Opener opens a store for a reference of its registered scheme.
type Opener func(ctx context.Context, ref string) (Store, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]Opener{}
)

// RegisterScheme registers an opener for a URL scheme like "s3".  The empty
// scheme is used for plain filesystem paths.
func RegisterScheme(scheme string, opener Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[strings.ToLower(scheme)] = opener
}

// Schemes returns the registered schemes.
func Schemes() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()
	schemes := make([]string, 0, len(openers))
	for s := range openers {
		if s != "" {
			schemes = append(schemes, s)
		}
	}
	sort.Strings(schemes)
	return schemes
}

// SplitScheme returns the lowercased scheme of a reference and the remainder
// after "://".  Plain paths have an empty scheme.
func SplitScheme(ref string) (scheme, rest string) {
	i := strings.Index(ref, "://")
	if i <= 0 {
		return "", ref
	}
	return strings.ToLower(ref[:i]), ref[i+3:]
}

// Open returns a store for the reference using the opener registered for its scheme.
func Open(ctx context.Context, ref string) (Store, error) {
	scheme, _ := SplitScheme(ref)
	openersMu.RLock()
	opener, found := openers[scheme]
	openersMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w %q in %q", ErrUnsupportedScheme, scheme, ref)
	}
	return opener(ctx, ref)
}

// Zarr hierarchy documents at each group or array.
const (
	GroupKey = ".zgroup"
	AttrsKey = ".zattrs"
	ArrayKey = ".zarray"
)

// Join joins store path elements with "/", ignoring empty elements.
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// IsZarr returns true if a group, array or attributes document exists at the
// root of the store.
func IsZarr(ctx context.Context, store Store) (bool, error) {
	for _, key := range []string{GroupKey, ArrayKey, AttrsKey} {
		found, err := store.Exists(ctx, key)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// ParseURL opens the reference and returns a store if it names a Zarr
// hierarchy.  If it does not, nil, nil is returned so callers can try other
// readers.  Stores are wrapped in a metadata cache if one is configured.
func ParseURL(ctx context.Context, ref string) (Store, error) {
	timedLog := ngff.NewTimeLog()
	store, err := Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	isZarr, err := IsZarr(ctx, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("can't check %q for a zarr hierarchy: %v", ref, err)
	}
	if !isZarr {
		ngff.Debugf("%s is not a zarr hierarchy\n", store)
		store.Close()
		return nil, nil
	}
	if size := CacheSize(); size > 0 {
		store = NewCachedStore(store, size)
	}
	timedLog.Debugf("Opened zarr hierarchy %s", store)
	return store, nil
}
