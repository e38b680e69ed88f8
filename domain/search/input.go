package search

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

//go:embed schema/search_input.json
var inputSchemaJSON []byte

var (
	inputSchemaOnce sync.Once
	inputSchema     *santhosh.Schema
	inputSchemaErr  error
)

func compiledInputSchema() (*santhosh.Schema, error) {
	inputSchemaOnce.Do(func() {
		compiler := santhosh.NewCompiler()
		compiler.Draft = santhosh.Draft7
		if err := compiler.AddResource("search_input.json", bytes.NewReader(inputSchemaJSON)); err != nil {
			inputSchemaErr = err
			return
		}
		inputSchema, inputSchemaErr = compiler.Compile("search_input.json")
	})
	return inputSchema, inputSchemaErr
}

// ParseInput 解析 JSON 形式的查询参数
//
// 文档结构不合法（非对象、未知字段、类型错误）时返回 *domain.SearchValidationError。
func ParseInput(raw []byte) (Input, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Input{}, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		n := validation.NewNotification()
		n.AddError("search input must be valid json")
		return Input{}, domain.NewSearchValidationError(n.ToJSON())
	}
	sch, err := compiledInputSchema()
	if err != nil {
		return Input{}, err
	}
	if err := sch.Validate(doc); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			n := validation.NewNotification()
			collectValidationErrors(ve, n)
			return Input{}, domain.NewSearchValidationError(n.ToJSON())
		}
		return Input{}, err
	}

	m, _ := doc.(map[string]any)
	return Input{
		Page:    m["page"],
		PerPage: m["per_page"],
		Sort:    m["sort"],
		SortDir: m["sort_dir"],
		Filter:  m["filter"],
	}, nil
}

func collectValidationErrors(ve *santhosh.ValidationError, n *validation.Notification) {
	for _, cause := range ve.Causes {
		collectValidationErrors(cause, n)
	}
	if len(ve.Causes) > 0 {
		return
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if idx := strings.Index(field, "/"); idx >= 0 {
		field = field[:idx]
	}
	n.AddError(ve.Message, field)
}
