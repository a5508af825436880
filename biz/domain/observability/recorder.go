package observability

import (
	"context"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/attempt"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/verdict"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/safego"

	"github.com/google/wire"
)

const (
	bufferSize   = 1024
	flushBatch   = 64
	flushEvery   = time.Second
	writeTimeout = 3 * time.Second
)

type record struct {
	attempt *attempt.GenerationAttempt
	verdict *verdict.Verdict
}

// Recorder 审计落库旁路: 调用记录与裁决只追加写, 永不阻塞主流程
// 缓冲满或落库失败时降级为日志输出
type Recorder struct {
	AttemptMapper attempt.MongoMapper
	VerdictMapper verdict.MongoMapper

	ch chan record
}

var RecorderSet = wire.NewSet(NewRecorder)

func NewRecorder(am attempt.MongoMapper, vm verdict.MongoMapper) *Recorder {
	r := &Recorder{AttemptMapper: am, VerdictMapper: vm, ch: make(chan record, bufferSize)}
	safego.Go(context.Background(), r.loop)
	return r
}

// RecordAttempts 非阻塞提交, 缓冲满时丢弃并打日志
func (r *Recorder) RecordAttempts(attempts []*attempt.GenerationAttempt) {
	for _, a := range attempts {
		select {
		case r.ch <- record{attempt: a}:
		default:
			logs.Infof("[Recorder] buffer full, drop attempt: %s", util.JSONF(a))
		}
	}
}

// RecordVerdict 非阻塞提交裁决记录
func (r *Recorder) RecordVerdict(v *verdict.Verdict) {
	select {
	case r.ch <- record{verdict: v}:
	default:
		logs.Infof("[Recorder] buffer full, drop verdict: %s", util.JSONF(v))
	}
}

func (r *Recorder) loop() {
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	var attempts []*attempt.GenerationAttempt
	var verdicts []*verdict.Verdict
	for {
		select {
		case rec := <-r.ch:
			if rec.attempt != nil {
				attempts = append(attempts, rec.attempt)
			}
			if rec.verdict != nil {
				verdicts = append(verdicts, rec.verdict)
			}
			if len(attempts)+len(verdicts) >= flushBatch {
				attempts, verdicts = r.flush(attempts, verdicts)
			}
		case <-ticker.C:
			attempts, verdicts = r.flush(attempts, verdicts)
		}
	}
}

// flush 批量落库, 失败降级为日志, 不重试不回塞
func (r *Recorder) flush(attempts []*attempt.GenerationAttempt, verdicts []*verdict.Verdict) ([]*attempt.GenerationAttempt, []*verdict.Verdict) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if len(attempts) > 0 {
		if err := r.AttemptMapper.InsertMany(ctx, attempts); err != nil {
			logs.Errorf("[Recorder] [flush] attempts err:%s, payload: %s",
				errorx.ErrorWithoutStack(err), util.JSONF(attempts))
		}
	}
	if len(verdicts) > 0 {
		if err := r.VerdictMapper.InsertMany(ctx, verdicts); err != nil {
			logs.Errorf("[Recorder] [flush] verdicts err:%s, payload: %s",
				errorx.ErrorWithoutStack(err), util.JSONF(verdicts))
		}
	}
	return nil, nil
}
