// Package ranker walks candidate folders and orders files against keyword,
// type, and time criteria. Selection is done with a bounded min-heap so a
// scan over a large tree costs O(N log K) instead of O(N log N).
package ranker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog/log"

	"localfind/internal/timeparse"
)

// FileCandidate is one file-system entry under consideration.
type FileCandidate struct {
	Path    string
	Name    string
	Ext     string
	Size    int64
	ModTime time.Time
	// Created is the creation instant when the platform exposes one;
	// zero otherwise.
	Created time.Time
}

// ScoreParts is the breakdown of a hit's relevance score.
type ScoreParts struct {
	Keyword   float64
	Recency   float64
	TypeBonus float64
}

// ScoredHit is a FileCandidate with its relevance score. Result sequences
// are sorted by descending score, ties broken by ascending path.
type ScoredHit struct {
	FileCandidate
	Score float64
	Parts ScoreParts
}

// Params are the inputs of one ranking pass. Everything is explicit; the
// engine holds no implicit defaults beyond MaxResults.
type Params struct {
	Roots      []string
	Keywords   []string
	Phrase     string // keywords in original order, for the in-order bonus
	AllowExts  []string
	Window     *timeparse.TimeWindow
	MaxResults int
	DenyDirs   []string
	Now        time.Time // zero means time.Now()
}

// DefaultMaxResults bounds the result set when Params.MaxResults is zero.
const DefaultMaxResults = 50

// Scoring weights, from strongest to weakest signal.
const (
	prefixScore   = 70.0
	substrScore   = 60.0
	baselineScore = 50.0
	phraseBonus   = 15.0
	typeBonus     = 10.0
	// fuzzyFloor is the minimum Levenshtein similarity that still earns a
	// partial keyword score.
	fuzzyFloor = 0.5
)

// Rank scans the given roots and returns at most MaxResults hits ordered by
// descending score. Per-entry I/O errors are skipped; a wholly inaccessible
// root contributes to the returned error but does not stop the other roots.
func Rank(ctx context.Context, p Params) ([]ScoredHit, error) {
	k := p.MaxResults
	if k <= 0 {
		k = DefaultMaxResults
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	allow := make(map[string]bool, len(p.AllowExts))
	for _, e := range p.AllowExts {
		allow[strings.ToLower(e)] = true
	}
	deny := make(map[string]bool, len(p.DenyDirs))
	for _, d := range p.DenyDirs {
		deny[d] = true
	}

	keywords := make([]string, 0, len(p.Keywords))
	for _, kw := range p.Keywords {
		keywords = append(keywords, strings.ToLower(kw))
	}
	phrase := strings.ToLower(p.Phrase)

	h := &hitHeap{}
	var rootErrs []error

	for _, root := range p.Roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			rootErrs = append(rootErrs, fmt.Errorf("root %s: %w", root, err))
			continue
		}
		walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				if path == absRoot {
					return err // inaccessible root, reported to the caller
				}
				log.Debug().Str("path", path).Err(err).Msg("skipping entry")
				return nil
			}
			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				name := d.Name()
				if deny[name] || strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			// WalkDir does not descend into symlinked directories; skip
			// symlinked files too so the scan cannot escape the roots.
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(name))
			if len(allow) > 0 && !allow[ext] {
				return nil
			}

			kwScore := keywordScore(name, keywords)
			if kwScore <= 0 {
				return nil
			}
			// Prune before the stat when no time filter can change the outcome.
			if p.Window == nil && h.Len() >= k && !h.beats(kwScore+recencyCeiling+phraseBonus+typeBonus, path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				log.Debug().Str("path", path).Err(err).Msg("stat failed, skipping")
				return nil
			}
			cand := FileCandidate{
				Path:    path,
				Name:    name,
				Ext:     ext,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Created: creationTime(info),
			}
			if p.Window != nil && !p.Window.Contains(cand.attrTime(p.Window.Attr)) {
				return nil
			}

			parts := ScoreParts{
				Keyword: kwScore,
				Recency: recencyBoost(now, cand.ModTime),
			}
			if len(keywords) > 1 && phrase != "" && strings.Contains(strings.ToLower(name), phrase) {
				parts.Keyword += phraseBonus
			}
			if len(allow) > 0 {
				parts.TypeBonus = typeBonus
			}
			hit := ScoredHit{
				FileCandidate: cand,
				Score:         parts.Keyword + parts.Recency + parts.TypeBonus,
				Parts:         parts,
			}
			h.offer(hit, k)
			return nil
		})
		if walkErr != nil {
			if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
				return nil, walkErr
			}
			log.Warn().Str("root", absRoot).Err(walkErr).Msg("root not scannable")
			rootErrs = append(rootErrs, fmt.Errorf("root %s: %w", absRoot, walkErr))
		}
	}

	hits := h.drain()
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Path < hits[j].Path
	})
	return hits, errors.Join(rootErrs...)
}

func (c *FileCandidate) attrTime(attr timeparse.Attr) time.Time {
	if attr == timeparse.AttrCreated && !c.Created.IsZero() {
		return c.Created
	}
	return c.ModTime
}

// keywordScore averages per-keyword match strength against the filename.
// An empty keyword list yields the positive baseline so unfiltered queries
// still surface everything.
func keywordScore(name string, keywords []string) float64 {
	if len(keywords) == 0 {
		return baselineScore
	}
	base := strings.ToLower(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	var total float64
	for _, kw := range keywords {
		switch {
		case strings.HasPrefix(stem, kw):
			total += prefixScore
		case strings.Contains(base, kw):
			total += substrScore
		default:
			if sim := bestTokenSimilarity(kw, stem); sim >= fuzzyFloor {
				total += sim * substrScore
			}
		}
	}
	return total / float64(len(keywords))
}

// bestTokenSimilarity compares a keyword against each filename token and
// returns the highest normalized Levenshtein similarity.
func bestTokenSimilarity(kw, stem string) float64 {
	best := 0.0
	for _, tok := range strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	}) {
		longest := len(tok)
		if len(kw) > longest {
			longest = len(kw)
		}
		if longest == 0 {
			continue
		}
		d := levenshtein.ComputeDistance(kw, tok)
		if sim := 1.0 - float64(d)/float64(longest); sim > best {
			best = sim
		}
	}
	return best
}

// recencyCeiling is the largest recency boost a candidate can earn, used for
// heap pruning before the stat call.
const recencyCeiling = 40.0

// recencyBoost decays in fixed tiers with the age of the timestamp. It is
// bounded so it can never outweigh a missing keyword match.
func recencyBoost(now, mtime time.Time) float64 {
	age := now.Sub(mtime)
	switch {
	case age < 0:
		return recencyCeiling // clock skew; treat as brand new
	case age < 24*time.Hour:
		return recencyCeiling
	case age < 7*24*time.Hour:
		return 25
	case age < 30*24*time.Hour:
		return 15
	case age < 180*24*time.Hour:
		return 8
	default:
		return 0
	}
}
