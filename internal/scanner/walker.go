package scanner

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path"
	"runtime"
	"sort"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/smlog"
)

// Result is the fully materialised output of Walk (spec §4.3's
// "scan(root, config) -> (stream of FileNode, TreeStats)").
type Result struct {
	Nodes []*Node
	Stats TreeStats
}

var logger = smlog.For("scanner")

// Walk performs a pre-order scan rooted at cfg.Root and returns every
// emitted node together with the aggregated TreeStats. It is the
// fully-materialised counterpart to Stream; both share walkRoot.
func Walk(ctx context.Context, cfg Config) (*Result, error) {
	var nodes []*Node
	stats, err := walkRoot(ctx, cfg, func(n *Node) error {
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Nodes: nodes, Stats: *stats}, nil
}

// Stream performs the same pre-order scan as Walk but pushes each node to
// sink as it is produced, returning only the final stats (spec §4.3's
// "scanStream(root, config, sink)"). Nodes are still collected in full
// pre-order before the content-search pass runs, so sink sees every node
// exactly once in the documented order.
func Stream(ctx context.Context, cfg Config, sink func(*Node) error) (*TreeStats, error) {
	return walkRoot(ctx, cfg, sink)
}

func walkRoot(ctx context.Context, cfg Config, sink func(*Node) error) (*TreeStats, error) {
	root := cfg.Root
	info, err := os.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.NotFound, err, "scan root %s does not exist", root)
		}
		return nil, apperr.Wrap(apperr.IOError, err, "stat scan root %s", root)
	}

	w := &walker{cfg: cfg, stats: &TreeStats{}, symlinks: newSymlinkResolver(cfg.SymlinkAllowList)}
	if cfg.Concurrency <= 0 {
		w.concurrency = runtime.NumCPU()
	} else {
		w.concurrency = cfg.Concurrency
	}

	var all []*Node
	collect := func(n *Node) error {
		all = append(all, n)
		return sink(n)
	}

	rootName := path.Base(root)
	if err := w.visit(ctx, root, []string{rootName}, "", 0, info, collect); err != nil {
		return nil, err
	}

	if cfg.SearchKeyword != "" {
		if err := w.searchContent(ctx, all); err != nil {
			return nil, err
		}
	}

	return w.stats, nil
}

type walker struct {
	cfg         Config
	stats       *TreeStats
	symlinks    *symlinkResolver
	concurrency int
}

// visit builds the Node for absPath and, if it resolves to a directory and
// depth allows, recurses into its children. It never aborts the overall
// walk on a per-entry error (spec §4.3 "Failure semantics").
func (w *walker) visit(ctx context.Context, absPath string, segPath []string, relPath string, depth int, info os.FileInfo, sink func(*Node) error) error {
	if w.cfg.CancelPoll != nil && w.cfg.CancelPoll() {
		return apperr.New(apperr.Cancelled, "scan cancelled")
	}
	select {
	case <-ctx.Done():
		return apperr.Wrap(apperr.Cancelled, ctx.Err(), "scan cancelled")
	default:
	}

	mode := info.Mode()
	isSymlink := isSymlinkMode(mode)
	name := segPath[len(segPath)-1]
	node := &Node{
		Path:     append([]string(nil), segPath...),
		Depth:    depth,
		IsSymlink: isSymlink,
		IsHidden: len(name) > 0 && name[0] == '.',
		Modified: info.ModTime(),
	}

	targetAbs := absPath
	targetInfo := info
	followedDir := false

	if isSymlink {
		if w.cfg.FollowSymlinks {
			realPath, skip, err := w.symlinks.resolve(absPath)
			if err != nil {
				logger.Debug("symlink error", "path", absPath, "error", err)
			}
			if skip {
				node.Kind = KindSymlink
				node.Permissions = permissionsOf(mode)
				node.FilesystemKind = detectFilesystemKind(absPath)
				w.stats.Update(node)
				return sink(node)
			}
			w.symlinks.markVisited(realPath)
			ti, err := os.Stat(realPath)
			if err != nil {
				node.Kind = KindSymlink
				node.PermissionDenied = os.IsPermission(err)
				w.stats.Update(node)
				return sink(node)
			}
			targetAbs = realPath
			targetInfo = ti
			followedDir = ti.IsDir()
		} else {
			node.Kind = KindSymlink
			node.Permissions = permissionsOf(mode)
			node.FilesystemKind = detectFilesystemKind(absPath)
			w.stats.Update(node)
			return sink(node)
		}
	}

	kind := kindFromFileMode(targetInfo.Mode())
	node.Kind = kind
	node.Permissions = permissionsOf(targetInfo.Mode())
	owner, group := ownerGroupOf(targetInfo)
	node.Owner, node.Group = owner, group
	node.Size = clampSize(targetAbs, kind, targetInfo.Size())
	node.FilesystemKind = detectFilesystemKind(targetAbs)
	if !isSymlink {
		node.Modified = targetInfo.ModTime()
	}

	isDir := kind == KindDirectory || followedDir
	node.Category = categorize(name, isDir, kind == KindExecutable, func() ([]byte, bool) {
		data, err := sniffHead(targetAbs)
		return data, err == nil
	})

	ignored := depth > 0 && w.cfg.SystemIgnorer != nil && w.cfg.SystemIgnorer.IsIgnoredAbs(targetAbs)
	if !ignored && depth > 0 && w.cfg.Ignorer != nil {
		ignored = w.cfg.Ignorer.IsIgnored(relPath, isDir)
	}
	if ignored {
		node.IsIgnored = true
		if !w.cfg.ShowIgnored {
			return nil
		}
		w.stats.Update(node)
		return sink(node)
	}

	w.stats.Update(node)
	if err := sink(node); err != nil {
		return err
	}

	if !isDir {
		return nil
	}
	if w.cfg.MaxDepth > 0 && depth >= w.cfg.MaxDepth {
		return nil
	}

	entries, err := os.ReadDir(targetAbs)
	if err != nil {
		if os.IsPermission(err) {
			node.PermissionDenied = true
			return nil
		}
		logger.Debug("read dir error", "path", targetAbs, "error", err)
		return nil
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		byName[e.Name()] = e
	}

	for _, childName := range names {
		if childName == "." || childName == ".." {
			continue
		}
		if !w.cfg.ShowHidden && len(childName) > 0 && childName[0] == '.' {
			continue
		}
		entry := byName[childName]
		childInfo, err := entry.Info()
		if err != nil {
			logger.Debug("entry info error", "path", childName, "error", err)
			continue
		}
		childAbs := path.Join(targetAbs, childName)
		childRel := childName
		if relPath != "" {
			childRel = path.Join(relPath, childName)
		}
		childSeg := append(append([]string(nil), segPath...), childName)
		if err := w.visit(ctx, childAbs, childSeg, childRel, depth+1, childInfo, sink); err != nil {
			return err
		}
	}

	return nil
}

func sniffHead(absPath string) ([]byte, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// searchContent runs the bounded content-search pass (spec §4.3), grounded
// on the teacher walker's errgroup phase-2 pattern but scoring matches
// instead of reading whole-file content into the node.
func (w *walker) searchContent(ctx context.Context, nodes []*Node) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, n := range nodes {
		n := n
		if n.IsDir() || n.IsIgnored || n.PermissionDenied {
			continue
		}
		matchesTypeFilter := w.cfg.FileTypeFilter != "" && extOf(n.Name()) == w.cfg.FileTypeFilter
		if !isTextLikeCategory(n.Category) && !matchesTypeFilter {
			continue
		}
		g.Go(func() error {
			matches, err := searchFile(gctx, n.JoinedPathAbs(w.cfg.Root), w.cfg.SearchKeyword)
			if err != nil {
				logger.Debug("content search error", "path", n.JoinedPath(), "error", err)
				return nil
			}
			n.SearchMatches = matches
			return nil
		})
	}

	return g.Wait()
}

func isTextLikeCategory(c Category) bool {
	switch c {
	case CategoryImage, CategoryVideo, CategoryAudio, CategoryFont, CategoryArchive, CategoryBinary, CategorySystemFile:
		return false
	default:
		return true
	}
}

// searchFile scans a file line-by-line collecting up to MaxSearchMatches
// byte offsets of keyword, stopping at the first non-UTF-8 read (spec
// §4.3's binary heuristic).
func searchFile(ctx context.Context, absPath, keyword string) ([]int64, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []int64
	var offset int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	needle := []byte(keyword)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return matches, ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if !utf8.Valid(line) {
			break
		}
		if idx := bytes.Index(line, needle); idx >= 0 {
			matches = append(matches, offset+int64(idx))
			if len(matches) >= MaxSearchMatches {
				break
			}
		}
		offset += int64(len(line)) + 1
	}
	return matches, nil
}

// JoinedPathAbs reconstructs the absolute filesystem path for a node given
// the scan root, by replacing the node's own root segment with root.
func (n *Node) JoinedPathAbs(root string) string {
	if len(n.Path) <= 1 {
		return root
	}
	rel := n.Path[1:]
	out := root
	for _, seg := range rel {
		out = path.Join(out, seg)
	}
	return out
}
