package content

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// DescriptionWordLimit 是找不到段落/句子边界时保留的最大词数。
const DescriptionWordLimit = 150

const maxStripPasses = 4

// descriptionEnds 按优先级排列：第一个在内容中出现的标记决定截断位置。
var descriptionEnds = []string{
	"</p>",
	"<br />",
	"<br/>",
	"<br>",
	"</ul>",
	"\n",
	". ",
	"! ",
	"? ",
}

var (
	stripPolicy = bluemonday.StrictPolicy()
	wordPattern = regexp.MustCompile(`\S+`)

	voidElements = map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true,
		"hr": true, "img": true, "input": true, "link": true, "meta": true,
		"param": true, "source": true, "track": true, "wbr": true,
	}
)

// DeriveDescription 从富文本内容中提取第一段或第一句，返回纯文本摘要。
// 内容为空或无法解析时返回空字符串，从不报错。
func DeriveDescription(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	lowered := lowerASCII(rawHTML)
	for _, end := range descriptionEnds {
		if pos := strings.Index(lowered, end); pos > -1 {
			return PlainText(CloseTags(rawHTML[:pos]))
		}
	}

	return PlainText(TruncateWordsHTML(rawHTML, DescriptionWordLimit))
}

// PlainText strips every tag, unescapes entities and collapses whitespace.
// Stripping repeats until the text is stable, so escaped markup such as
// "&lt;b&gt;" never survives as a literal tag. Invalid UTF-8 is dropped.
func PlainText(fragment string) string {
	text := strings.ToValidUTF8(fragment, "")
	for i := 0; i < maxStripPasses; i++ {
		next := html.UnescapeString(stripPolicy.Sanitize(html.UnescapeString(text)))
		if next == text {
			break
		}
		text = next
	}
	return strings.Join(strings.Fields(strings.ToValidUTF8(text, "")), " ")
}

// CloseTags 为被截断的 HTML 片段补齐未闭合的标签。末尾残缺的标签会被丢弃。
func CloseTags(fragment string) string {
	if lt := strings.LastIndex(fragment, "<"); lt > strings.LastIndex(fragment, ">") {
		fragment = fragment[:lt]
	}

	open := openTags(fragment)
	if len(open) == 0 {
		return fragment
	}

	var b strings.Builder
	b.WriteString(fragment)
	writeClosers(&b, open)
	return b.String()
}

// TruncateWordsHTML keeps the first limit words of s, preserving markup and
// closing any tag left open by the cut. s is returned unchanged when it has
// no more than limit words.
func TruncateWordsHTML(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var (
		out   strings.Builder
		open  []string
		words int
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return s
		}
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			locs := wordPattern.FindAllStringIndex(raw, -1)
			need := limit - words
			if len(locs) > need {
				if need > 0 {
					out.WriteString(raw[:locs[need-1][1]])
				}
				writeClosers(&out, open)
				return out.String()
			}
			words += len(locs)
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); !voidElements[tag] {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			open = popTag(open, string(name))
		}
		out.WriteString(raw)
	}
}

func openTags(fragment string) []string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var open []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return open
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); !voidElements[tag] {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			open = popTag(open, string(name))
		}
	}
}

func popTag(open []string, tag string) []string {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == tag {
			return open[:i]
		}
	}
	return open
}

func writeClosers(b *strings.Builder, open []string) {
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</")
		b.WriteString(open[i])
		b.WriteString(">")
	}
}

// lowerASCII lowers only A-Z so byte offsets stay aligned with the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
