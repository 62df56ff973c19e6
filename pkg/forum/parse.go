package forum

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const topicDateLayout = "January 02, 2006, 03:04:05 PM"

var (
	sescRegex       = regexp.MustCompile(`sesc=([0-9a-zA-Z]+)`)
	subjectIDRegex  = regexp.MustCompile(`subject_(\d+)`)
	msgAnchorRegex  = regexp.MustCompile(`#msg(\d+)`)
	profileUIDRegex = regexp.MustCompile(`;u=(\d+)`)
	meritRegex      = regexp.MustCompile(`\((\d+)\)`)
)

// EncodeEntities escapes every character the board would otherwise mangle as
// a numeric HTML entity.
func EncodeEntities(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 0x00A0 && r <= 0x9999) || r == '<' || r == '>' || r == '&' {
			fmt.Fprintf(&b, "&#%d;", r)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// parseSesc extracts the session check token from the logout link.
func parseSesc(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", err
	}

	href, ok := doc.Find(`td.maintab_back a[href*="index.php?action=logout;sesc="]`).First().Attr("href")
	if !ok {
		return "", errors.New("logout link not found, session may have expired")
	}

	match := sescRegex.FindStringSubmatch(href)
	if match == nil {
		return "", fmt.Errorf("invalid logout link %q", href)
	}

	return match[1], nil
}

// parsePublishedPostID returns the id of the last post shown on the thread
// page the board lands on after posting.
func parsePublishedPostID(html []byte) (int64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return 0, err
	}

	id, _ := doc.Find(`div[id^=subject_]`).Last().Attr("id")
	match := subjectIDRegex.FindStringSubmatch(id)
	if match == nil {
		return 0, errors.New("published post not found in response")
	}

	return strconv.ParseInt(match[1], 10, 64)
}

// parseEditedPostID reads the post id from the anchor of the URL the board
// redirects to after an edit.
func parseEditedPostID(location string) (int64, error) {
	match := msgAnchorRegex.FindStringSubmatch(location)
	if match == nil {
		return 0, fmt.Errorf("no post anchor in %q", location)
	}

	return strconv.ParseInt(match[1], 10, 64)
}

// parseTopic scrapes the first post of a thread page. Times are read as UTC,
// "Today at" is resolved against now.
func parseTopic(html []byte, topicID int64, now time.Time) (*Topic, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	post := doc.Find("#quickModForm > table.bordercolor > tbody > tr > td > table > tbody > tr > td > table").First()
	if post.Length() == 0 {
		return nil, fmt.Errorf("topic %d has no posts", topicID)
	}

	topic := &Topic{TopicID: topicID}

	href, _ := post.Find("td.poster_info > b > a").First().Attr("href")
	match := profileUIDRegex.FindStringSubmatch(href)
	if match == nil {
		return nil, fmt.Errorf("topic %d: author not found", topicID)
	}
	topic.AuthorUID, err = strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil, err
	}

	dateDiv := post.Find("td.td_headerandpost table div:nth-child(2)").First()
	dateDiv.Children().Filter("span.editplain").Remove()
	dateText := strings.TrimSpace(dateDiv.Text())
	dateText = strings.Replace(dateText, "Today at", now.UTC().Format("January 02, 2006,"), 1)
	topic.CreatedAt, err = time.ParseInLocation(topicDateLayout, dateText, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("topic %d: invalid date %q: %w", topicID, dateText, err)
	}

	topic.Title = strings.TrimSpace(post.Find("td.td_headerandpost div[id^=subject_] a").First().Text())

	merited := post.Find("td.td_headerandpost div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Merited by")
	}).Last()
	if merited.Length() > 0 {
		text := merited.Text()
		text = text[strings.Index(text, "Merited by"):]
		for _, m := range meritRegex.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				topic.Merits += n
			}
		}
	}

	return topic, nil
}
