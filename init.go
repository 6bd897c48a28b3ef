package cpregex

import (
	"runtime"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sys/cpu"
)

// Features describes the CPU capabilities the engine can use for its SIMD
// prefilters on this machine.
type Features struct {
	AVX2  bool
	SSSE3 bool
	SSE42 bool
	ASIMD bool
}

var (
	initOnce sync.Once

	// Written once under initOnce, read-only afterwards.
	pkgLogger   log.Logger = log.NewNopLogger()
	pkgFeatures Features
)

// Init performs the process-wide setup: it records the logger used by the
// package and detects CPU features. Only the first call has any effect;
// Compile and CompileSet call it with a no-op logger if the host has not.
// Subjects and patterns are always UTF-8.
func Init(logger log.Logger) Features {
	initOnce.Do(func() {
		if logger != nil {
			pkgLogger = logger
		}
		pkgFeatures = Features{
			AVX2:  cpu.X86.HasAVX2,
			SSSE3: cpu.X86.HasSSSE3,
			SSE42: cpu.X86.HasSSE42,
			ASIMD: cpu.ARM64.HasASIMD,
		}
		level.Debug(pkgLogger).Log(
			"msg", "regex backend initialized",
			"encoding", "UTF-8",
			"arch", runtime.GOARCH,
			"avx2", pkgFeatures.AVX2,
			"ssse3", pkgFeatures.SSSE3,
			"sse42", pkgFeatures.SSE42,
			"asimd", pkgFeatures.ASIMD,
		)
	})
	return pkgFeatures
}

// CPUFeatures returns the features recorded by Init.
func CPUFeatures() Features {
	return Init(nil)
}

func logger() log.Logger {
	Init(nil)
	return pkgLogger
}
