// Package convert drives the conversion run: it walks the export tree,
// parses every message file, groups messages, and writes the Markdown
// archive. It is the only component with I/O and ordering responsibility;
// everything downstream of it is a pure transformation.
package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/arlberg/slack2md/internal/apperr"
	"github.com/arlberg/slack2md/internal/checksum"
	"github.com/arlberg/slack2md/internal/export"
	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/models"
	"github.com/arlberg/slack2md/internal/render"
	"github.com/arlberg/slack2md/internal/storage"
	"github.com/arlberg/slack2md/internal/transform"
)

// Options selects the grouping mode and the ignore policy for a run.
type Options struct {
	// GroupByDay pools messages across files and re-buckets them by UTC
	// calendar date. Default (false) emits one document per source file.
	GroupByDay bool
	// IgnoreChannelLogin drops channel-join notices before grouping.
	IgnoreChannelLogin bool
}

// Converter converts one export tree into a Markdown archive. Channels are
// processed strictly one at a time; the first unrecoverable error aborts
// the run.
type Converter struct {
	src    storage.Provider
	dst    storage.Provider
	ws     *models.Workspace
	r      *render.Renderer
	idx    *index.DB // nil disables archive indexing
	opts   Options
	logger *slog.Logger
}

// New builds a Converter. idx may be nil when indexing is disabled.
func New(src, dst storage.Provider, ws *models.Workspace, idx *index.DB, opts Options, logger *slog.Logger) *Converter {
	return &Converter{
		src:    src,
		dst:    dst,
		ws:     ws,
		r:      render.New(ws),
		idx:    idx,
		opts:   opts,
		logger: logger,
	}
}

// LoadWorkspace reads channels.json and users.json from the source root
// into the run's read-only directories.
func LoadWorkspace(src storage.Provider) (*models.Workspace, error) {
	chData, err := src.Read("channels.json")
	if err != nil {
		return nil, wrapMissing(err, "channels.json")
	}
	channels, err := export.Channels(chData)
	if err != nil {
		return nil, err
	}

	uData, err := src.Read("users.json")
	if err != nil {
		return nil, wrapMissing(err, "users.json")
	}
	users, err := export.Users(uData)
	if err != nil {
		return nil, err
	}

	return &models.Workspace{Channels: channels, Users: users}, nil
}

func wrapMissing(err error, name string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", apperr.ErrMissingSourceFile, name)
	}
	return err
}

// Run converts every channel directory under the source root, one at a
// time, in sorted order.
func (c *Converter) Run() error {
	dirs, err := c.src.Dirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := c.Channel(dir); err != nil {
			return fmt.Errorf("convert %s: %w", dir, err)
		}
	}
	return nil
}

// group is one output document in the making: its name and the messages it
// will contain, in emit order.
type group struct {
	name string
	msgs []models.Message
}

// Channel converts one channel directory: parse every message file, apply
// the ignore policy, group, and write one document per non-empty group plus
// the channel index. A directory without message files is skipped entirely.
func (c *Converter) Channel(dir string) error {
	files, err := c.src.List(dir, ".json")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	groups, dropped, err := c.collect(dir, files)
	if err != nil {
		return err
	}

	var written []string
	for _, g := range groups {
		if len(g.msgs) == 0 {
			continue
		}
		doc := c.r.Document(g.name, g.msgs)
		docPath := path.Join(dir, g.name+".md")
		if err := c.dst.Write(docPath, []byte(doc)); err != nil {
			return err
		}
		if err := c.indexDocument(docPath, dir, g, doc); err != nil {
			return err
		}
		written = append(written, g.name)
	}

	// Zero emitted documents: no index either.
	if len(written) == 0 {
		return nil
	}

	// Newest group first.
	sort.Sort(sort.Reverse(sort.StringSlice(written)))
	if err := c.dst.Write(path.Join(dir, "index.md"), []byte(render.Index(dir, written))); err != nil {
		return err
	}

	c.logger.Info("channel converted",
		slog.String("channel", dir),
		slog.Int("documents", len(written)),
		slog.Int("dropped", dropped))
	return nil
}

// collect parses the channel's message files and builds the ordered group
// list before anything is written. Returns the groups and the number of
// messages dropped by the ignore policy.
func (c *Converter) collect(dir string, files []string) ([]group, int, error) {
	dropped := 0
	var groups []group
	byDay := make(map[string][]models.Message)

	for _, name := range files {
		data, err := c.src.Read(path.Join(dir, name))
		if err != nil {
			return nil, 0, wrapMissing(err, path.Join(dir, name))
		}
		msgs, err := export.Messages(data)
		if err != nil {
			return nil, 0, err
		}

		kept := msgs[:0:0]
		for _, m := range msgs {
			if c.opts.IgnoreChannelLogin && m.IsChannelJoin() {
				dropped++
				continue
			}
			kept = append(kept, m)
		}

		if c.opts.GroupByDay {
			for _, m := range kept {
				byDay[m.Day()] = append(byDay[m.Day()], m)
			}
			continue
		}
		groups = append(groups, group{name: strings.TrimSuffix(name, ".json"), msgs: kept})
	}

	if c.opts.GroupByDay {
		days := make([]string, 0, len(byDay))
		for d := range byDay {
			days = append(days, d)
		}
		sort.Strings(days)
		for _, d := range days {
			groups = append(groups, group{name: d, msgs: byDay[d]})
		}
	}
	return groups, dropped, nil
}

// indexDocument upserts the emitted document and its messages into the
// archive index. Unchanged documents (same checksum) are skipped.
func (c *Converter) indexDocument(docPath, channel string, g group, doc string) error {
	if c.idx == nil {
		return nil
	}
	cs := checksum.Sum([]byte(doc))
	prev, err := c.idx.GetChecksum(docPath)
	if err != nil {
		return err
	}
	if prev == cs {
		return nil
	}

	rows := make([]index.MessageRow, len(g.msgs))
	for i, m := range g.msgs {
		rows[i] = index.MessageRow{
			TS:       m.TS,
			Day:      m.Day(),
			Username: transform.Resolve(m, c.ws.Users).Username,
			Text:     m.Text,
		}
	}
	return c.idx.UpsertDocument(index.DocRow{
		Path:      docPath,
		Channel:   channel,
		Name:      g.name,
		Checksum:  cs,
		UpdatedAt: time.Now().UTC(),
	}, rows)
}
