package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/openai/openai-go"
)

var (
	ErrInvalidContextIndex = errors.New("invalid context index")
)

type ChatContextInfo struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Current bool   `json:"current,omitempty"`
}

// ChatContext is one conversation with the model.
type ChatContext struct {
	Messages []openai.ChatCompletionMessageParamUnion `json:"messages"`
}

func (c *ChatContext) IsEmpty() bool {
	return len(c.Messages) == 0
}

func (c *ChatContext) title() string {
	if len(c.Messages) == 0 {
		return "New context"
	}
	if str, ok := c.Messages[0].GetContent().AsAny().(*string); ok && str != nil {
		return *str
	}
	return "New context"
}

// ChatContextManager holds the conversations and which one is current.
// Contexts persist across sessions through Save and Load.
type ChatContextManager struct {
	mu       sync.RWMutex
	contexts []*ChatContext
	current  int

	restoreOnce sync.Once
}

// current context, created on demand. Callers must hold mu.
func (m *ChatContextManager) currentLocked() *ChatContext {
	if len(m.contexts) == 0 {
		m.contexts = append(m.contexts, &ChatContext{})
		m.current = 0
	}
	return m.contexts[m.current]
}

func (m *ChatContextManager) addMsg(msg openai.ChatCompletionMessageParamUnion) *ChatContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.currentLocked()
	c.Messages = append(c.Messages, msg)
	return c
}

func (m *ChatContextManager) setMsgs(msgs []openai.ChatCompletionMessageParamUnion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentLocked().Messages = msgs
}

// Clear drops the messages of the current context.
func (m *ChatContextManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.contexts) == 0 {
		return
	}
	m.contexts[m.current].Messages = nil
}

// New creates a fresh context and makes it current.
func (m *ChatContextManager) New() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts = append(m.contexts, &ChatContext{})
	m.current = len(m.contexts) - 1
}

// Delete removes a context by index, moving the current marker when needed.
func (m *ChatContextManager) Delete(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.contexts) {
		return ErrInvalidContextIndex
	}
	m.contexts = append(m.contexts[:index], m.contexts[index+1:]...)
	if m.current >= index && m.current > 0 {
		m.current--
	}
	return nil
}

// SwitchTo makes the context at index current.
func (m *ChatContextManager) SwitchTo(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.contexts) {
		return ErrInvalidContextIndex
	}
	m.current = index
	return nil
}

// List describes all contexts, marking the current one.
func (m *ChatContextManager) List() []*ChatContextInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var infos []*ChatContextInfo
	for i, c := range m.contexts {
		infos = append(infos, &ChatContextInfo{
			Index:   i,
			Title:   c.title(),
			Current: i == m.current,
		})
	}
	return infos
}

// Save writes all contexts to store.
func (m *ChatContextManager) Save(store string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.Create(store)
	if err != nil {
		return fmt.Errorf("create llm contexts store: %w", err)
	}
	if err := json.NewEncoder(f).Encode(map[string]any{"current": m.current, "contexts": m.contexts}); err != nil {
		f.Close()
		return fmt.Errorf("encode llm contexts store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close llm contexts store: %w", err)
	}
	return nil
}

// Load reads contexts from store. A missing store is not an error.
func (m *ChatContextManager) Load(store string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.Open(store)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open llm contexts store: %w", err)
	}
	defer f.Close()
	var stored struct {
		Current  int            `json:"current"`
		Contexts []*ChatContext `json:"contexts"`
	}
	if err := json.NewDecoder(f).Decode(&stored); err != nil {
		return fmt.Errorf("decode llm contexts store: %w", err)
	}
	m.contexts = stored.Contexts
	m.current = stored.Current
	if m.current >= len(m.contexts) {
		m.current = 0
	}
	return nil
}

// LoadOnce loads the store on first call only.
func (m *ChatContextManager) LoadOnce(store string) (err error) {
	m.restoreOnce.Do(func() {
		err = m.Load(store)
	})
	return
}
