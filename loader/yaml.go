package loader

import (
	"fmt"

	"github.com/nathoo/parley/engine/actor"
	"github.com/nathoo/parley/types"
	"gopkg.in/yaml.v2"
)

// yamlFile is the YAML authoring format. Durations and delays are seconds.
type yamlFile struct {
	Game        *yamlGame        `yaml:"game"`
	Actors      []yamlActor      `yaml:"actors"`
	Expressions []yamlExpression `yaml:"expressions"`
	Dialogues   []yamlDialogue   `yaml:"dialogues"`
}

type yamlGame struct {
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Version   string `yaml:"version"`
	Intro     string `yaml:"intro"`
	PlayerTag string `yaml:"player_tag"`
}

type yamlActor struct {
	ID          string                   `yaml:"id"`
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Portrait    string                   `yaml:"portrait"`
	TriggerTag  string                   `yaml:"trigger_tag"`
	UseTrigger  *bool                    `yaml:"use_trigger"`
	UseCache    *bool                    `yaml:"use_cache"`
	Dialogues   []string                 `yaml:"dialogues"`
	Conditions  []map[string]interface{} `yaml:"conditions"`
}

type yamlExpression struct {
	ID         string  `yaml:"id"`
	Actor      string  `yaml:"actor"`
	Sprite     string  `yaml:"sprite"`
	Animation  string  `yaml:"animation"`
	Duration   float64 `yaml:"duration"`
	Transition float64 `yaml:"transition"`
}

type yamlDialogue struct {
	ID         string                   `yaml:"id"`
	Next       string                   `yaml:"next"`
	Conditions []map[string]interface{} `yaml:"conditions"`
	Lines      []yamlLine               `yaml:"lines"`
	Choices    []yamlChoice             `yaml:"choices"`
}

type yamlEffect struct {
	Sound    string  `yaml:"sound"`
	Visual   string  `yaml:"visual"`
	Duration float64 `yaml:"duration"`
	Delay    float64 `yaml:"delay"`
}

type yamlLine struct {
	Text       string       `yaml:"text"`
	Audio      string       `yaml:"audio"`
	Expression string       `yaml:"expression"`
	Duration   *float64     `yaml:"duration"`
	Effects    []yamlEffect `yaml:"effects"`
}

// UnmarshalYAML accepts either a bare string or a mapping.
func (l *yamlLine) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var text string
	if err := unmarshal(&text); err == nil {
		*l = yamlLine{Text: text}
		return nil
	}
	type plain yamlLine
	return unmarshal((*plain)(l))
}

type yamlChoice struct {
	Text string `yaml:"text"`
	Next string `yaml:"next"`
}

// UnmarshalYAML accepts either a bare string or a mapping.
func (c *yamlChoice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var text string
	if err := unmarshal(&text); err == nil {
		*c = yamlChoice{Text: text}
		return nil
	}
	type plain yamlChoice
	return unmarshal((*plain)(c))
}

// loadYAML parses one YAML document and adds its definitions to b.
func loadYAML(data []byte, file string, b *builder) error {
	var doc yamlFile
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return err
	}

	if doc.Game != nil {
		b.setGame(types.GameDef{
			Title:     doc.Game.Title,
			Author:    doc.Game.Author,
			Version:   doc.Game.Version,
			Intro:     doc.Game.Intro,
			PlayerTag: doc.Game.PlayerTag,
		}, file)
	}

	for i, ya := range doc.Actors {
		if ya.ID == "" {
			return fmt.Errorf("actor #%d has no id", i+1)
		}
		conds, err := yamlConditions(ya.Conditions)
		if err != nil {
			return fmt.Errorf("actor %q: %w", ya.ID, err)
		}
		tag := ya.TriggerTag
		if tag == "" {
			tag = actor.DefaultTriggerTag
		}
		b.addActor(&types.ActorDef{
			ID:         ya.ID,
			TriggerTag: tag,
			UseTrigger: boolOr(ya.UseTrigger, true),
			Profile: types.ActorProfile{
				Name:                  ya.Name,
				Description:           ya.Description,
				Portrait:              ya.Portrait,
				Dialogues:             ya.Dialogues,
				InteractionConditions: conds,
				UseInteractionCache:   boolOr(ya.UseCache, true),
			},
		}, file)
	}

	for i, ye := range doc.Expressions {
		if ye.ID == "" {
			return fmt.Errorf("expression #%d has no id", i+1)
		}
		b.addExpression(&types.Expression{
			ID:                 ye.ID,
			ActorID:            ye.Actor,
			Sprite:             ye.Sprite,
			Animation:          ye.Animation,
			Duration:           seconds(ye.Duration),
			TransitionDuration: seconds(ye.Transition),
		}, file)
	}

	for i, yd := range doc.Dialogues {
		if yd.ID == "" {
			return fmt.Errorf("dialogue #%d has no id", i+1)
		}
		conds, err := yamlConditions(yd.Conditions)
		if err != nil {
			return fmt.Errorf("dialogue %q: %w", yd.ID, err)
		}
		d := &types.Dialogue{ID: yd.ID, Next: yd.Next, Conditions: conds}
		for _, yl := range yd.Lines {
			line := types.Line{
				Text:            yl.Text,
				Audio:           yl.Audio,
				Expression:      yl.Expression,
				DisplayDuration: -1,
			}
			if yl.Duration != nil {
				line.DisplayDuration = seconds(*yl.Duration)
			}
			for _, ye := range yl.Effects {
				line.Effects = append(line.Effects, types.Effect{
					Sound:    ye.Sound,
					Visual:   ye.Visual,
					Duration: seconds(ye.Duration),
					Delay:    seconds(ye.Delay),
				})
			}
			d.Lines = append(d.Lines, line)
		}
		for _, yc := range yd.Choices {
			d.Choices = append(d.Choices, types.Choice{Text: yc.Text, Next: yc.Next})
		}
		b.addDialogue(d, file)
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func yamlConditions(raw []map[string]interface{}) ([]types.Condition, error) {
	var out []types.Condition
	for _, m := range raw {
		c, err := yamlCondition(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func yamlCondition(m map[string]interface{}) (types.Condition, error) {
	condType, _ := m["type"].(string)
	if condType == "" {
		return types.Condition{}, fmt.Errorf("condition without type")
	}

	if condType == "not" {
		if inner, ok := normalize(m["inner"]).(map[string]interface{}); ok {
			c, err := yamlCondition(inner)
			if err != nil {
				return types.Condition{}, err
			}
			return types.Condition{Type: "not", Inner: &c}, nil
		}
	}

	params := map[string]any{}
	for k, v := range m {
		if k != "type" {
			params[k] = normalize(v)
		}
	}
	return types.Condition{Type: condType, Params: params}, nil
}

// normalize converts yaml.v2's map[interface{}]interface{} into string-keyed
// maps, recursively.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case map[string]interface{}:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
