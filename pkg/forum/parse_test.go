package forum

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const topicPage = `<html><body>
<form id="quickModForm">
<table class="bordercolor"><tr><td>
	<table><tr><td>
		<table><tr>
			<td class="poster_info"><b><a href="https://bitcointalk.org/index.php?action=profile;u=42">alice</a></b></td>
			<td class="td_headerandpost">
				<table><tr><td>
					<div id="subject_5001"><a href="https://bitcointalk.org/index.php?topic=77.msg5001#msg5001">Guia de carteiras</a></div>
					<div class="smalltext">%s<span class="editplain">Last edit: later</span></div>
				</td></tr></table>
				<div class="post">Corpo do tópico (9)</div>
				<div class="smalltext"><i>Merited by </i><a href="#">bob</a> (5), <a href="#">carol</a> (2)</div>
			</td>
		</tr></table>
	</td></tr></table>
</td></tr></table>
</form>
</body></html>`

func TestParseTopic(t *testing.T) {
	now := time.Date(2024, 1, 20, 15, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		date string
		want time.Time
	}{
		{
			name: "full date",
			date: "January 05, 2024, 10:11:12 PM",
			want: time.Date(2024, 1, 5, 22, 11, 12, 0, time.UTC),
		},
		{
			name: "today",
			date: "Today at 08:30:00 AM",
			want: time.Date(2024, 1, 20, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			html := []byte(fmt.Sprintf(topicPage, tt.date))
			topic, err := parseTopic(html, 77, now)
			require.NoError(t, err)
			require.Equal(t, int64(77), topic.TopicID)
			require.Equal(t, int64(42), topic.AuthorUID)
			require.True(t, tt.want.Equal(topic.CreatedAt), topic.CreatedAt)
			require.Equal(t, "Guia de carteiras", topic.Title)
			require.Equal(t, 7, topic.Merits)
		})
	}
}

func TestParseTopic_Invalid(t *testing.T) {
	_, err := parseTopic([]byte(`<html><body>The topic does not exist.</body></html>`), 1, time.Now())
	require.Error(t, err)
}

func TestParseSesc(t *testing.T) {
	sesc, err := parseSesc([]byte(`<table><tr>
		<td class="maintab_back"><a href="https://bitcointalk.org/index.php?action=profile">Profile</a></td>
		<td class="maintab_back"><a href="https://bitcointalk.org/index.php?action=logout;sesc=f00dbabe">Logout</a></td>
	</tr></table>`))
	require.NoError(t, err)
	require.Equal(t, "f00dbabe", sesc)

	_, err = parseSesc([]byte(`<html><body>Please login</body></html>`))
	require.Error(t, err)
}

func TestParsePublishedPostID(t *testing.T) {
	id, err := parsePublishedPostID([]byte(`<div id="subject_100"></div><div id="subject_101"></div>`))
	require.NoError(t, err)
	require.Equal(t, int64(101), id)

	_, err = parsePublishedPostID([]byte(`<div>flood control</div>`))
	require.Error(t, err)
}

func TestParseEditedPostID(t *testing.T) {
	id, err := parseEditedPostID("https://bitcointalk.org/index.php?topic=5.msg777#msg777")
	require.NoError(t, err)
	require.Equal(t, int64(777), id)

	_, err = parseEditedPostID("https://bitcointalk.org/index.php?action=post2")
	require.Error(t, err)
}

func TestEncodeEntities(t *testing.T) {
	require.Equal(t, "plain [b]text[/b]", EncodeEntities("plain [b]text[/b]"))
	require.Equal(t, "Usu&#225;rio &#60;3 &#38; t&#243;picos", EncodeEntities("Usuário <3 & tópicos"))
	require.Equal(t, "&#160;", EncodeEntities("\u00a0"))
	// Outside of the escaped range.
	require.Equal(t, "\U0001F600", EncodeEntities("\U0001F600"))
}
