package convo

import (
	"context"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/conversation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/safego"

	"github.com/google/wire"
)

const sweepBatch = 200

// Sweeper 后台巡检: 超过静默窗口的对话置为abandoned,
// 已终结的对话再过一个窗口后归档, 外部建单悬空的升级记录补扫重试;
// 永远不在消息处理链路内联执行
type Sweeper struct {
	Config             *config.Config
	ConversationMapper conversation.MongoMapper
	Locker             *Locker
	Handoff            *escalation.Handoff

	stop chan struct{}
}

var SweeperSet = wire.NewSet(NewSweeper)

func NewSweeper(c *config.Config, cm conversation.MongoMapper, m *Manager) *Sweeper {
	return &Sweeper{Config: c, ConversationMapper: cm, Locker: m.locker, Handoff: m.Handoff, stop: make(chan struct{})}
}

// Start 启动巡检循环
func (s *Sweeper) Start() {
	interval := time.Duration(s.Config.Pipeline.SweepIntervalMin) * time.Minute
	safego.Go(context.Background(), func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.SweepOnce(context.Background())
			case <-s.stop:
				return
			}
		}
	})
}

func (s *Sweeper) Stop() {
	close(s.stop)
}

// SweepOnce 单轮巡检, 供定时器与测试调用
func (s *Sweeper) SweepOnce(ctx context.Context) {
	window := time.Duration(s.Config.Pipeline.InactivityWindowMin) * time.Minute
	cutoff := time.Now().Add(-window)

	s.sweep(ctx, Sweepable(), cutoff, cst.ConvAbandoned)
	s.sweep(ctx, []int32{cst.ConvResolved, cst.ConvAbandoned}, cutoff, cst.ConvArchived)

	// 升级记录的外部建单若在进程退出时悬空, 靠巡检续接重试
	if err := s.Handoff.RecoverPending(ctx, sweepBatch); err != nil {
		logs.Errorf("[Sweeper] [SweepOnce] recover pending handoff err:%s", errorx.ErrorWithoutStack(err))
	}
}

func (s *Sweeper) sweep(ctx context.Context, statuses []int32, cutoff time.Time, to int32) {
	cs, err := s.ConversationMapper.ListInactive(ctx, statuses, cutoff, sweepBatch)
	if err != nil {
		logs.Errorf("[Sweeper] [sweep] list err:%s", errorx.ErrorWithoutStack(err))
		return
	}
	for _, c := range cs {
		s.transition(ctx, c, to)
	}
}

// transition 巡检迁移同样走对话锁与CAS, 与在途处理互斥
func (s *Sweeper) transition(ctx context.Context, c *conversation.Conversation, to int32) {
	cid := c.ConversationId.Hex()
	s.Locker.Lock(cid)
	defer s.Locker.Unlock(cid)

	fresh, err := s.ConversationMapper.FindOne(ctx, cid)
	if err != nil {
		logs.Errorf("[Sweeper] [transition] load %s err:%s", cid, errorx.ErrorWithoutStack(err))
		return
	}
	if !CanTransition(fresh.Status, to) {
		return
	}
	fresh.Status = to
	// 迁移即一次活动, 归档要再等满一个窗口
	fresh.LastActivity = time.Now()
	if err = s.ConversationMapper.SaveState(ctx, fresh); err != nil {
		// 冲突说明对话刚恢复活动, 留给下一轮
		logs.CondErrorf(!errorxIsConflict(err), "[Sweeper] [transition] save %s err:%s", cid, errorx.ErrorWithoutStack(err))
	}
}

func errorxIsConflict(err error) bool {
	return err == conversation.ErrStateConflict
}
