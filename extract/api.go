package extract

// API提取策略：沿data_path在JSON响应中定位记录列表，按fields_map取出各字段

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dszqbsm/notifier/config"
)

type APIExtractor struct{}

/*
输入JSON响应内容和任务配置，输出归一化的记录列表

data_path未能定位到数组时视为空结果并返回错误；非对象的列表元素会被跳过；
链接构造的优先级：base和链接值都存在时拼接，只有链接值时视为完整链接，
只有base时链接就是base，此时标题为N/A的记录无法区分彼此，直接丢弃
*/
func (e *APIExtractor) Extract(body []byte, task *config.Channel, limit int) ([]Record, error) {
	if task.API == nil {
		return nil, errors.New("api task missing api_config")
	}
	if limit <= 0 {
		return nil, nil
	}

	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("invalid json response: %w", err)
	}

	list, err := walkDataPath(root, task.API.DataPath)
	if err != nil {
		return nil, err
	}

	fields := task.API.FieldsMap
	base := task.API.BaseLinkURL

	var items []Record
	for _, entry := range list {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		title := NA
		if v, exists := obj[fields.TitleKey()]; exists && v != nil {
			title = stringify(v)
		}
		date := NA
		if v, exists := obj[fields.DateKey()]; exists && v != nil {
			date = NormalizeAPIDate(stringify(v))
		}

		var linkValue string
		hasLink := false
		if v, exists := obj[fields.LinkKeyName()]; exists && v != nil {
			linkValue = stringify(v)
			hasLink = true
		}

		link := NA
		switch {
		case base != "" && hasLink:
			link = base + linkValue
		case hasLink:
			link = linkValue
		case base != "":
			link = base
			if title == NA {
				continue
			}
		}

		items = append(items, Record{Title: title, Link: link, Date: date})
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

// 沿data_path逐级向下定位记录列表，路径元素是对象键或数组下标
func walkDataPath(root interface{}, path []config.PathStep) ([]interface{}, error) {
	node := root
	for _, step := range path {
		switch cur := node.(type) {
		case map[string]interface{}:
			if step.IsIndex {
				return nil, fmt.Errorf("data_path: index %d applied to an object", step.Index)
			}
			node = cur[step.Key]
		case []interface{}:
			if !step.IsIndex {
				return nil, fmt.Errorf("data_path: key %q applied to an array", step.Key)
			}
			if step.Index < 0 || step.Index >= len(cur) {
				return nil, fmt.Errorf("data_path: index %d out of range", step.Index)
			}
			node = cur[step.Index]
		default:
			return nil, fmt.Errorf("data_path: cannot descend into %T", node)
		}
	}
	list, ok := node.([]interface{})
	if !ok {
		return nil, errors.New("data_path does not resolve to a list")
	}
	return list, nil
}

// JSON标量统一转为字符串，数字去掉多余的小数位
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return NA
		}
		return string(data)
	}
}
