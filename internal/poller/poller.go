package poller

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// 轮询器状态常量
const (
	StateIdle     = "idle"
	StateFetching = "fetching"
	StateReady    = "ready"
	StateFailed   = "failed"
)

// 状态机事件常量
const (
	eventFetch   = "fetch"
	eventSucceed = "succeed"
	eventFail    = "fail"
)

// Call 一个视图快照的组成调用
// Required 为 true 时该调用失败会导致整个轮询周期失败（保留上一份快照）；
// 为 false 时仅记录过期标记并沿用上一周期的值
type Call struct {
	Name     string
	Required bool
	Fetch    func(ctx context.Context) (interface{}, error)
}

// Result 一个轮询周期的结果
// Values 按调用名存放成功获取的值；Stale 列出本周期失败、值来自上一周期的调用
type Result struct {
	Values map[string]interface{}
	Stale  []string
	At     time.Time
}

// Get 按名取值
func (r *Result) Get(name string) (interface{}, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// IsStale 判断某个调用的值是否过期
func (r *Result) IsStale(name string) bool {
	for _, s := range r.Stale {
		if s == name {
			return true
		}
	}
	return false
}

// Poller 单个视图的刷新循环
// 启动后立即执行一次轮询，此后按固定间隔重复；所有组成调用并发执行，
// 全部结束后才应用结果，周期之间不会交错
type Poller struct {
	name     string
	interval time.Duration
	calls    []Call
	logger   *zap.Logger
	fsm      *fsm.FSM

	mu          sync.RWMutex
	last        *Result
	running     bool
	stopped     bool // Stop 之后到达的结果一律丢弃
	subscribers []chan *Result

	stopCh  chan struct{}
	forceCh chan forceRequest
	wg      sync.WaitGroup
}

type forceRequest struct {
	reply chan *Result
}

// New 创建轮询器
func New(name string, interval time.Duration, calls []Call, logger *zap.Logger) *Poller {
	p := &Poller{
		name:     name,
		interval: interval,
		calls:    calls,
		logger:   logger,
		stopCh:   make(chan struct{}),
		forceCh:  make(chan forceRequest),
	}

	p.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventFetch, Src: []string{StateIdle, StateReady, StateFailed}, Dst: StateFetching},
			{Name: eventSucceed, Src: []string{StateFetching}, Dst: StateReady},
			{Name: eventFail, Src: []string{StateFetching}, Dst: StateFailed},
		},
		fsm.Callbacks{},
	)

	return p
}

// Name 返回视图名
func (p *Poller) Name() string {
	return p.name
}

// State 返回当前状态机状态
func (p *Poller) State() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fsm.Current()
}

// Last 返回最近一份有效快照，可能为 nil
func (p *Poller) Last() *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Subscribe 订阅快照更新
// 每个成功的轮询周期会向所有订阅者推送一次结果，慢消费者会被跳过
func (p *Poller) Subscribe() <-chan *Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan *Result, 10)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// Start 启动刷新循环：立即执行首次轮询，然后按间隔重复
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)
}

// Stop 停止刷新循环
// 停止后任何迟到的轮询结果都不会再写入快照
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.stopped = true
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()

	// 运行协程已退出，不会再有发布，可以安全关闭订阅通道
	p.mu.Lock()
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
	p.mu.Unlock()
}

// ForcePoll 立即执行一次带外轮询并返回其结果
// 命令派发器在写操作落定后调用，确保可见状态是先写后读
func (p *Poller) ForcePoll(ctx context.Context) *Result {
	req := forceRequest{reply: make(chan *Result, 1)}

	select {
	case p.forceCh <- req:
	case <-p.stopCh:
		return p.Last()
	case <-ctx.Done():
		return p.Last()
	}

	select {
	case res := <-req.reply:
		return res
	case <-ctx.Done():
		return p.Last()
	}
}

// run 刷新循环主体
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	// 启动时立即执行首次轮询，视图在一个往返内就能拿到数据
	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		case req := <-p.forceCh:
			p.cycle(ctx)
			req.reply <- p.Last()
		}
	}
}

// callOutcome 单个组成调用的结果
type callOutcome struct {
	name  string
	value interface{}
	err   error
}

// cycle 执行一个完整轮询周期
// 所有组成调用并发发出，全部落定后才合并应用；某个调用失败不会阻塞其它调用
func (p *Poller) cycle(ctx context.Context) {
	p.transition(eventFetch)

	outcomes := make([]callOutcome, len(p.calls))
	var wg sync.WaitGroup

	for i, call := range p.calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			value, err := call.Fetch(ctx)
			outcomes[i] = callOutcome{name: call.Name, value: value, err: err}
		}(i, call)
	}

	wg.Wait()

	p.apply(outcomes)
}

// apply 合并一个周期的结果并写入快照
// 必选调用失败时整个周期失败，上一份快照保持不变；可选调用失败时沿用旧值并打过期标记
func (p *Poller) apply(outcomes []callOutcome) {
	p.mu.Lock()

	// 视图已停用，迟到的结果直接丢弃
	if p.stopped {
		p.mu.Unlock()
		return
	}

	requiredFailed := false
	result := &Result{
		Values: make(map[string]interface{}, len(outcomes)),
		At:     time.Now(),
	}

	for i, out := range outcomes {
		if out.err == nil {
			result.Values[out.name] = out.value
			continue
		}

		p.logger.Warn("Poll call failed",
			zap.String("poller", p.name),
			zap.String("call", out.name),
			zap.Error(out.err))

		if p.calls[i].Required {
			requiredFailed = true
			continue
		}

		// 可选调用失败：沿用上一周期的值，标记为过期
		result.Stale = append(result.Stale, out.name)
		if p.last != nil {
			if prev, ok := p.last.Values[out.name]; ok {
				result.Values[out.name] = prev
			}
		}
	}

	if requiredFailed {
		p.fsmEvent(eventFail)
		p.mu.Unlock()
		return
	}

	p.last = result
	p.fsmEvent(eventSucceed)
	subscribers := make([]chan *Result, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- result:
		default:
		}
	}
}

// transition 加锁触发状态机事件
func (p *Poller) transition(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fsmEvent(event)
}

// fsmEvent 触发状态机事件，调用方需持有锁
func (p *Poller) fsmEvent(event string) {
	if err := p.fsm.Event(context.Background(), event); err != nil {
		p.logger.Debug("Poller state transition skipped",
			zap.String("poller", p.name),
			zap.String("event", event),
			zap.Error(err))
	}
}
