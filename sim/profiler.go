package sim

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/named-data/closersite/core"
	"github.com/pkg/errors"
)

// ProfilerConfig names the output files of the runtime profiles. Empty disables a profile.
type ProfilerConfig struct {
	CpuProfile   string
	MemProfile   string
	BlockProfile string
}

// Profiler records runtime profiles around a simulation run.
type Profiler struct {
	config  ProfilerConfig
	cpuFile *os.File
	block   *pprof.Profile
}

func NewProfiler(config ProfilerConfig) *Profiler {
	return &Profiler{config: config}
}

func (p *Profiler) String() string {
	return "Profiler"
}

func (p *Profiler) Start() (err error) {
	if p.config.CpuProfile != "" {
		p.cpuFile, err = os.Create(p.config.CpuProfile)
		if err != nil {
			return errors.Wrap(err, "unable to open output file for CPU profile")
		}

		core.LogInfo(p, "Profiling CPU - outputting to ", p.config.CpuProfile)
		if err = pprof.StartCPUProfile(p.cpuFile); err != nil {
			p.cpuFile.Close()
			p.cpuFile = nil
			return errors.Wrap(err, "unable to start CPU profile")
		}
	}

	if p.config.BlockProfile != "" {
		core.LogInfo(p, "Profiling blocking operations - outputting to ", p.config.BlockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}

	return
}

// Stop ends the CPU profile and writes the heap and block profiles.
func (p *Profiler) Stop() (err error) {
	if p.config.MemProfile != "" {
		core.LogInfo(p, "Profiling memory - outputting to ", p.config.MemProfile)
		memFile, cerr := os.Create(p.config.MemProfile)
		if cerr != nil {
			err = errors.Wrap(cerr, "unable to open output file for memory profile")
		} else {
			runtime.GC()
			if werr := pprof.WriteHeapProfile(memFile); werr != nil {
				err = errors.Wrap(werr, "unable to write memory profile")
			}
			memFile.Close()
		}
	}

	if p.block != nil {
		blockFile, cerr := os.Create(p.config.BlockProfile)
		if cerr != nil {
			err = errors.Wrap(cerr, "unable to open output file for block profile")
		} else {
			if werr := p.block.WriteTo(blockFile, 0); werr != nil {
				err = errors.Wrap(werr, "unable to write block profile")
			}
			blockFile.Close()
		}
		runtime.SetBlockProfileRate(0)
		p.block = nil
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}
	return
}
