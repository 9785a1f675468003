package core

import (
	"sync"

	"apbio/errcode"
	"apbio/protocol"
)

// maxArgs bounds the argument count of any message in protocol.Messages.
const maxArgs = 4

// CommandHandler runs one command with its decoded arguments. The returned
// value travels back in the result response.
type CommandHandler func(args []uint32) (uint32, error)

// Command is a registered message with its handler.
type Command struct {
	protocol.Message
	Handler CommandHandler
}

// Responder sends frames back to the host. *protocol.Transport satisfies it.
type Responder interface {
	SendCommand(cmdID uint16, args func(output protocol.OutputBuffer))
}

// CommandRegistry maps message IDs to handlers.
type CommandRegistry struct {
	mu         sync.RWMutex
	commands   map[uint16]*Command
	nameToID   map[string]uint16
	responder  Responder
	dictionary string
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// Register binds handler to the message with the given ID. Registering an
// ID twice replaces the handler.
func (r *CommandRegistry) Register(id uint16, handler CommandHandler) error {
	msg, ok := protocol.MessageByID(id)
	if !ok || handler == nil || msg.NumParams() > maxArgs {
		return &errcode.E{C: errcode.InvalidParams, Op: "registry.register", Msg: "message " + utoa(uint32(id))}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[id] = &Command{Message: msg, Handler: handler}
	r.nameToID[msg.Name] = id
	r.rebuildDictionary()
	return nil
}

type binding struct {
	id uint16
	h  CommandHandler
}

func (r *CommandRegistry) registerAll(bs ...binding) {
	for _, b := range bs {
		if err := r.Register(b.id, b.h); err != nil {
			panic("core: " + err.Error())
		}
	}
}

// SetResponder sets where Dispatch sends result frames.
func (r *CommandRegistry) SetResponder(resp Responder) {
	r.mu.Lock()
	r.responder = resp
	r.mu.Unlock()
}

func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

func (r *CommandRegistry) GetCommandByName(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Call runs command id with already decoded arguments.
func (r *CommandRegistry) Call(id uint16, args []uint32) (uint32, error) {
	cmd, ok := r.GetCommand(id)
	if !ok {
		return 0, &errcode.E{C: errcode.UnknownCommand, Op: "registry.call", Msg: utoa(uint32(id))}
	}
	if len(args) != cmd.NumParams() {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: cmd.Name, Msg: "want " + itoa(cmd.NumParams()) + " args"}
	}
	return cmd.Handler(args)
}

// Dispatch decodes the arguments of command id from *data, runs it and
// answers with one result frame. It is the protocol.CommandHandler of the
// firmware transport. Only errors that leave the rest of the frame
// undecodable are returned.
func (r *CommandRegistry) Dispatch(id uint16, data *[]byte) error {
	cmd, ok := r.GetCommand(id)
	if !ok {
		err := &errcode.E{C: errcode.UnknownCommand, Op: "registry.dispatch", Msg: utoa(uint32(id))}
		r.respond(err.C, 0)
		return err
	}

	var buf [maxArgs]uint32
	args := buf[:cmd.NumParams()]
	for i := range args {
		v, err := protocol.DecodeVLQUint(data)
		if err != nil {
			r.respond(errcode.InvalidParams, 0)
			return &errcode.E{C: errcode.InvalidParams, Op: cmd.Name, Err: err}
		}
		args[i] = v
	}

	value, err := cmd.Handler(args)
	if err != nil && IsDebugEnabled() {
		DebugPrintln("[CMD] " + err.Error())
	}
	r.respond(errcode.Of(err), value)
	return nil
}

func (r *CommandRegistry) respond(code errcode.Code, value uint32) {
	r.mu.RLock()
	resp := r.responder
	r.mu.RUnlock()
	if resp == nil {
		return
	}
	resp.SendCommand(protocol.MsgResult, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(code.Wire()))
		protocol.EncodeVLQUint(out, value)
	})
}

// GetDictionary lists the registered commands, one "name format" per line
// in ID order.
func (r *CommandRegistry) GetDictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dictionary
}

// rebuildDictionary must be called with the lock held
func (r *CommandRegistry) rebuildDictionary() {
	dict := ""
	for _, msg := range protocol.Messages {
		if _, ok := r.commands[msg.ID]; !ok {
			continue
		}
		dict += msg.Name
		if msg.Format != "" {
			dict += " " + msg.Format
		}
		dict += "\n"
	}
	r.dictionary = dict
}
