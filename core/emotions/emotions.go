// Package emotions implements keyword-based emotion detection over
// conversational text and the empathy mapping used to bias the assistant's
// synthesized tone.
package emotions

import "strings"

type Emotion string

const (
	Neutral   Emotion = "neutral"
	Happy     Emotion = "happy"
	Sad       Emotion = "sad"
	Angry     Emotion = "angry"
	Surprised Emotion = "surprised"
)

// WireName returns the spelling the remote synthesis service expects.
func (e Emotion) WireName() string {
	if e == Surprised {
		return "surprise"
	}
	return string(e)
}

// ParseEmotion normalizes an emotion tag from the remote service. Unknown
// tags map to Neutral.
func ParseEmotion(tag string) Emotion {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "happy":
		return Happy
	case "sad":
		return Sad
	case "angry":
		return Angry
	case "surprise", "surprised":
		return Surprised
	default:
		return Neutral
	}
}

var happyKeywords = []string{
	"哈哈", "嘻嘻", "开心", "高兴", "太好了", "棒", "真棒", "厉害",
	"恭喜", "祝贺", "欢迎", "期待", "兴奋", "太棒", "好玩", "有趣",
	"喜欢", "爱", "幸福", "快乐", "嘿嘿", "耶", "哇", "好耶",
	"haha", "hehe", "happy", "great", "awesome", "wonderful", "excited",
	"！！", "~~", "^_^", ":)", "😊", "😄", "🎉",
}

var sadKeywords = []string{
	"难过", "伤心", "抱歉", "对不起", "遗憾", "可惜", "唉", "哎",
	"心疼", "同情", "理解你", "不容易", "辛苦", "委屈", "失望",
	"sorry", "sad", "unfortunately", "regret",
	"呜", "...", "😢", "😔",
}

var angryKeywords = []string{
	"生气", "愤怒", "讨厌", "烦", "可恶", "气死", "受不了",
	"不行", "不可以", "不允许", "警告", "注意", "严肃",
	"angry", "annoyed", "stop", "warning",
	"！！！", "😠", "😤",
}

var surprisedKeywords = []string{
	"哇", "天哪", "真的吗", "不会吧", "居然", "竟然", "没想到",
	"意外", "惊讶", "震惊", "吓", "啊", "诶", "咦",
	"wow", "really", "amazing", "incredible", "surprised", "what",
	"？？", "?!", "！？", "😮", "😲", "🤯",
}

// categories fixes both the scoring sets and the tie-break order: the first
// category with the maximum score wins.
var categories = []struct {
	emotion  Emotion
	keywords []string
}{
	{Happy, happyKeywords},
	{Sad, sadKeywords},
	{Angry, angryKeywords},
	{Surprised, surprisedKeywords},
}

// Detect scores text against the keyword sets and returns the winning
// emotion. At least one match is required; otherwise it reports
// (Neutral, false).
func Detect(text string) (Emotion, bool) {
	lowered := strings.ToLower(text)

	best := Neutral
	bestScore := 0
	for _, category := range categories {
		score := 0
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = category.emotion
			bestScore = score
		}
	}

	if bestScore < 1 {
		return Neutral, false
	}
	return best, true
}

// EmpathyMapping maps a detected user emotion to the tone the assistant
// should respond with. The mapping is deliberately configurable; how to meet
// an angry user is a product decision, not a protocol one.
type EmpathyMapping map[Emotion]Emotion

// DefaultEmpathyMapping shares joy and sorrow but de-escalates anger rather
// than mirroring it.
func DefaultEmpathyMapping() EmpathyMapping {
	return EmpathyMapping{
		Happy:     Happy,
		Sad:       Sad,
		Angry:     Neutral,
		Surprised: Happy,
		Neutral:   Neutral,
	}
}

// Respond returns the assistant tone for a user emotion, defaulting to
// Neutral for unmapped values.
func (m EmpathyMapping) Respond(user Emotion) Emotion {
	if tone, ok := m[user]; ok {
		return tone
	}
	return Neutral
}
