// Package response holds the JSON envelope every endpoint answers with.
package response

// Resp is the {code,msg,data} envelope. Data is never null on the wire.
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp { return New(CodeOK, CodeMsgMap[CodeOK], data) }

// Error 失败响应；msg 为空时用默认文案
func Error(code int, msg string) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return New(code, msg, nil)
}

// Page is a listing slice plus its unpaged total. Items is [] rather than null when empty.
type Page[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

func NewPage[T any](items []T, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Total: total, Items: items}
}
