package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
	"github.com/danielpatrickdp/scenechat/internal/session"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// #region events
func eventToStruct(ev surface.Event) (*structpb.Struct, error) {
	m := map[string]interface{}{"type": string(ev.Type)}
	if ev.Region != "" {
		m["region"] = string(ev.Region)
	}
	if ev.Role != "" {
		m["role"] = string(ev.Role)
	}
	if ev.Mode != "" {
		m["mode"] = string(ev.Mode)
	}
	if ev.Text != "" {
		m["text"] = ev.Text
	}
	if ev.Break {
		m["break"] = true
	}
	if ev.On {
		m["on"] = true
	}
	return structpb.NewStruct(m)
}

func eventFromStruct(st *structpb.Struct) surface.Event {
	f := st.GetFields()
	return surface.Event{
		Type:   surface.EventType(f["type"].GetStringValue()),
		Region: session.ID(f["region"].GetStringValue()),
		Role:   session.Role(f["role"].GetStringValue()),
		Mode:   session.Mode(f["mode"].GetStringValue()),
		Text:   f["text"].GetStringValue(),
		Break:  f["break"].GetBoolValue(),
		On:     f["on"].GetBoolValue(),
	}
}

// #endregion events

// #region commands
func commandToStruct(cmd surface.Command) (*structpb.Struct, error) {
	m := map[string]interface{}{"op": cmd.Op}
	if cmd.Prompt != "" {
		m["prompt"] = cmd.Prompt
	}
	return structpb.NewStruct(m)
}

func commandFromStruct(st *structpb.Struct) (surface.Command, error) {
	f := st.GetFields()
	op, ok := f["op"]
	if !ok {
		return surface.Command{}, fmt.Errorf("command has no op")
	}
	return surface.Command{Op: op.GetStringValue(), Prompt: f["prompt"].GetStringValue()}, nil
}

// #endregion commands

// #region views
func viewToStruct(v matcher.View) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func viewFromStruct(st *structpb.Struct) (matcher.View, error) {
	var v matcher.View
	b, err := protojson.Marshal(st)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(b, &v)
	return v, err
}

// #endregion views
