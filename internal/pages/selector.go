package pages

import (
    "fmt"
    "sort"
    "strconv"
    "strings"
)

// ErrBadSelection wraps malformed page selection specs.
var ErrBadSelection = fmt.Errorf("invalid page selection")

// ParseSelection parses a selection like "1,3-5" against the document's
// total page count. It returns nil for an empty spec, meaning all pages.
// Out-of-range pages are dropped rather than rejected; if nothing survives
// the filter the result is nil as well. Malformed tokens and reversed
// ranges are errors.
func ParseSelection(spec string, total int) ([]int, error) {
    spec = strings.TrimSpace(spec)
    if spec == "" || strings.EqualFold(spec, "all") {
        return nil, nil
    }

    seen := map[int]bool{}
    for _, chunk := range strings.Split(spec, ",") {
        chunk = strings.TrimSpace(chunk)
        if chunk == "" {
            return nil, fmt.Errorf("%w: empty token in %q", ErrBadSelection, spec)
        }
        if a, b, ok := strings.Cut(chunk, "-"); ok {
            lo, err := strconv.Atoi(strings.TrimSpace(a))
            if err != nil {
                return nil, fmt.Errorf("%w: bad range start %q", ErrBadSelection, chunk)
            }
            hi, err := strconv.Atoi(strings.TrimSpace(b))
            if err != nil {
                return nil, fmt.Errorf("%w: bad range end %q", ErrBadSelection, chunk)
            }
            if hi < lo {
                return nil, fmt.Errorf("%w: reversed range %q", ErrBadSelection, chunk)
            }
            for p := lo; p <= hi; p++ {
                if p >= 1 && p <= total {
                    seen[p] = true
                }
            }
            continue
        }
        p, err := strconv.Atoi(chunk)
        if err != nil {
            return nil, fmt.Errorf("%w: bad page number %q", ErrBadSelection, chunk)
        }
        if p >= 1 && p <= total {
            seen[p] = true
        }
    }

    if len(seen) == 0 {
        return nil, nil
    }
    out := make([]int, 0, len(seen))
    for p := range seen {
        out = append(out, p)
    }
    sort.Ints(out)
    return out, nil
}
