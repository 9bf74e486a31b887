package content

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackSlug 在标题无法转写出任何 ASCII 字符时使用（例如纯中文标题）。
const FallbackSlug = "untitled"

// SlugChecker 判断某个 slug 是否已被同一作用域内的其他记录占用。
// 实现方需要自行排除当前记录，以保证重复保存是幂等的。
type SlugChecker interface {
	SlugExists(slug string) (bool, error)
}

// SlugCheckerFunc 让普通函数满足 SlugChecker。
type SlugCheckerFunc func(slug string) (bool, error)

// SlugExists implements SlugChecker.
func (f SlugCheckerFunc) SlugExists(slug string) (bool, error) {
	return f(slug)
}

type slugSet map[string]struct{}

func (s slugSet) SlugExists(slug string) (bool, error) {
	_, ok := s[slug]
	return ok, nil
}

// slugFolds 转写 NFKD 无法分解的常见拉丁字母。
var slugFolds = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ł", "l",
	"þ", "th",
)

// Slugify 将标题转写为 URL 安全的小写 slug：
// 去掉重音符号，非字母数字的连续片段折叠为单个 "-"，并去除首尾分隔符。
// 无法转写的非 ASCII 字母与数字直接丢弃，不产生分隔符。
func Slugify(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded := slugFolds.Replace(strings.ToLower(title))
	ascii, _, err := transform.String(t, folded)
	if err != nil {
		ascii = folded
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsNumber(r)):
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// UniqueSlug 以 base 为候选，若已被占用则依次尝试 base-2、base-3……直到可用。
func UniqueSlug(base string, checker SlugChecker) (string, error) {
	if base == "" {
		base = FallbackSlug
	}
	if checker == nil {
		return base, nil
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := checker.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// GenerateUniqueSlug derives a slug from title that is not present in existing.
func GenerateUniqueSlug(title string, existing []string) string {
	set := make(slugSet, len(existing))
	for _, slug := range existing {
		set[slug] = struct{}{}
	}
	// slugSet never returns an error
	slug, _ := UniqueSlug(Slugify(title), set)
	return slug
}
