package clips

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forPelevin/narrashort/internal/types"
)

// Adapter picks a random background clip from a local folder.
type Adapter struct {
	dir  string
	exts map[string]struct{}
	rnd  *rand.Rand
}

func New(dir string, seed uint64) *Adapter {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(seed, seed)
	}
	return &Adapter{
		dir:  dir,
		exts: map[string]struct{}{".mp4": {}},
		rnd:  rand.New(src),
	}
}

func (a *Adapter) Pick(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	files, err := a.List()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", types.Missing("no .mp4 files found in %s", a.dir)
	}
	return files[a.rnd.IntN(len(files))], nil
}

// List returns the candidate clips in a stable order.
func (a *Adapter) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read videos dir: %v", types.ErrMissingInput, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := a.exts[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		out = append(out, filepath.Join(a.dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
