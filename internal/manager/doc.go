// Package manager coordinates upscaling requests. It is structured into
// small files by concern:
//
//   - manager.go: core Manager type, simple getters, Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - errors.go: error types with StatusCode and Is* helpers.
//   - helpers.go: model resolution and content type checks.
//   - admission.go: bounded queue and in-flight slots.
//   - upscale.go: the Upscale entry point and scratch cleanup.
//   - adapter_*.go: Upscaler implementations (exec, http, resample).
//   - status_report.go, sanity.go, hostinfo.go: reporting for /status and /readyz.
//   - sweeper.go: background removal of stale scratch files.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, Upscale, Status, Ready, Close).
package manager
