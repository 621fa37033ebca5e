package irc

import "sync"

// HookFunc handles one command after the extension pipeline declined to halt.
type HookFunc func(c *Client, msg *Message) error

// HookTable binds at most one hook to each command. Registering a command
// again replaces the earlier hook.
type HookTable struct {
	mu    sync.RWMutex
	hooks map[string]HookFunc
}

func NewHookTable() *HookTable {
	return &HookTable{hooks: make(map[string]HookFunc)}
}

// Register binds fn to command; a nil fn removes the binding.
func (t *HookTable) Register(command string, fn HookFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fn == nil {
		delete(t.hooks, command)
		return
	}
	t.hooks[command] = fn
}

func (t *HookTable) Lookup(command string) (HookFunc, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.hooks[command]
	return fn, ok
}

// invoke runs fn, turning an error or panic into a *HookFault.
func (t *HookTable) invoke(fn HookFunc, c *Client, msg *Message) (fault *HookFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &HookFault{Command: msg.Command, Message: msg, Err: panicError(r)}
		}
	}()
	if err := fn(c, msg); err != nil {
		return &HookFault{Command: msg.Command, Message: msg, Err: err}
	}
	return nil
}

// pong is the built-in PING hook.
func pong(c *Client, msg *Message) error {
	return c.Send("PONG :" + pingToken(msg))
}
