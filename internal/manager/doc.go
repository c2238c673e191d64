// Package manager owns the lifecycle of the single cached inference asset:
// fetch it once, keep it fresh, and hand out a ready handle while the bytes
// underneath may be replaced. It is structured into small files by concern:
//
//   - manager.go: core Manager type, simple getters, Reset/Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies
//     defaults and reconciles the version record against the disk.
//   - types.go: internal state types (State, Snapshot).
//   - errors.go: error types and helpers (IsCorruptAsset, IsUnavailable, ...).
//   - ensure.go: EnsureReady/CheckForUpdate, in-flight coalescing, the
//     fetch-commit-record-open sequence, and the fallback policy.
//   - guard.go: handle lifetime guard; reference-counted borrow/swap/release.
//   - engine.go: the inference runtime boundary (Engine, EngineHandle).
//   - infer.go: scoped-borrow inference entry point.
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus counters for fetches, installs, swaps, purges.
//   - status_report.go: Snapshot/Status projections.
//
// Build tags and runtimes:
//
//   - In-process llama (standard):
//     Uses the go-llama.cpp engine. Enabled with `-tags=llama`.
//     Files: adapter_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: adapter_llama_stub.go.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, EnsureReady, CheckForUpdate, Infer,
// Status, Reset, Close). Internal types are subject to change.
package manager
