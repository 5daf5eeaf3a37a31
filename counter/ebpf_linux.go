//go:build linux

package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"
)

// ebpf 来源只有一个伪网卡
const ebpfInterfaceName = "cgroup"

// per-CPU 数组里的两个槽位
const (
	slotIngress uint32 = 0
	slotEgress  uint32 = 1
)

// EBPFSource 在 cgroup 根上挂 cgroup_skb ingress/egress 程序，
// 把 skb->len 累加进 per-CPU 数组，读取时把所有 CPU 的值相加
// 统计的是本机所有 socket 的 IP 流量，不区分网卡 (包含本地回环)
type EBPFSource struct {
	log      *slog.Logger
	counters *ebpf.Map
	progs    []*ebpf.Program
	links    []link.Link
}

func NewEBPFSource(log *slog.Logger, cgroupPath string) (*EBPFSource, error) {
	// eBPF map 需要锁定内存，Linux 默认限制很小，不移除会导致加载失败
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("failed to remove memlock limit: %w", err)
	}

	m, err := ebpf.NewMap(&ebpf.MapSpec{
		Name:       "sm_bytes",
		Type:       ebpf.PerCPUArray,
		KeySize:    4,
		ValueSize:  8,
		MaxEntries: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create counters map: %w", err)
	}
	s := &EBPFSource{log: log, counters: m}

	hooks := []struct {
		name   string
		attach ebpf.AttachType
		slot   uint32
	}{
		{"sm_ingress", ebpf.AttachCGroupInetIngress, slotIngress},
		{"sm_egress", ebpf.AttachCGroupInetEgress, slotEgress},
	}
	for _, h := range hooks {
		prog, err := ebpf.NewProgram(&ebpf.ProgramSpec{
			Name:         h.name,
			Type:         ebpf.CGroupSKB,
			License:      "GPL",
			Instructions: countBytes(m, h.slot),
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to load %s program: %w", h.name, err)
		}
		s.progs = append(s.progs, prog)

		l, err := link.AttachCgroup(link.CgroupOptions{
			Path:    cgroupPath,
			Attach:  h.attach,
			Program: prog,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to attach %s to %s: %w", h.name, cgroupPath, err)
		}
		s.links = append(s.links, l)
	}

	log.Info("counter: ebpf programs attached", "cgroup", cgroupPath)
	return s, nil
}

// countBytes 生成 cgroup_skb 程序：
//
//	r6 = skb->len
//	v = map_lookup(&counters, &slot)
//	if v != NULL { *v += r6 }
//	return 1 (放行)
func countBytes(m *ebpf.Map, slot uint32) asm.Instructions {
	return asm.Instructions{
		asm.LoadMem(asm.R6, asm.R1, 0, asm.Word),
		asm.StoreImm(asm.RFP, -4, int64(slot), asm.Word),
		asm.Mov.Reg(asm.R2, asm.RFP),
		asm.Add.Imm(asm.R2, -4),
		asm.LoadMapPtr(asm.R1, m.FD()),
		asm.FnMapLookupElem.Call(),
		asm.JEq.Imm(asm.R0, 0, "exit"),
		asm.LoadMem(asm.R1, asm.R0, 0, asm.DWord),
		asm.Add.Reg(asm.R1, asm.R6),
		asm.StoreMem(asm.R0, 0, asm.R1, asm.DWord),
		asm.Mov.Imm(asm.R0, 1).WithSymbol("exit"),
		asm.Return(),
	}
}

func (s *EBPFSource) Name() string { return SourceEBPF }

func (s *EBPFSource) Counters(ctx context.Context) ([]Interface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := s.sum(slotIngress)
	if err != nil {
		return nil, err
	}
	out, err := s.sum(slotEgress)
	if err != nil {
		return nil, err
	}
	return []Interface{{
		Name:     ebpfInterfaceName,
		Up:       true,
		BytesIn:  in,
		BytesOut: out,
	}}, nil
}

func (s *EBPFSource) sum(slot uint32) (uint64, error) {
	var perCPU []uint64
	if err := s.counters.Lookup(slot, &perCPU); err != nil {
		return 0, fmt.Errorf("failed to read counter slot %d: %w", slot, err)
	}
	var total uint64
	for _, v := range perCPU {
		total += v
	}
	return total, nil
}

// Close 卸载程序，顺序：link -> program -> map
func (s *EBPFSource) Close() error {
	var errs []error
	for _, l := range s.links {
		errs = append(errs, l.Close())
	}
	for _, p := range s.progs {
		errs = append(errs, p.Close())
	}
	if s.counters != nil {
		errs = append(errs, s.counters.Close())
	}
	s.links, s.progs, s.counters = nil, nil, nil
	return errors.Join(errs...)
}
