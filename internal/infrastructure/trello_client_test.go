package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"atlassian-suite-mcp/internal/domain"
)

func newTestTrelloClient(serverURL string) *TrelloClient {
	return NewTrelloClient(&domain.TrelloConfig{
		APIKey:   "test-key",
		APIToken: "test-token",
		BaseURL:  serverURL,
		MemberID: "me123",
	}, nil)
}

func TestTrelloGetBoards_QueryAuth(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"key":    r.URL.Query().Get("key"),
			"token":  r.URL.Query().Get("token"),
			"fields": r.URL.Query().Get("fields"),
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Trello requests must not carry an Authorization header")
		}
		io.WriteString(w, `[{"id":"b1","name":"Sprint","url":"https://trello.com/b/b1"}]`)
	}))
	defer server.Close()

	client := newTestTrelloClient(server.URL)

	boards, err := client.GetBoards(context.Background())
	if err != nil {
		t.Fatalf("GetBoards failed: %v", err)
	}

	if gotPath != "/members/me123/boards" {
		t.Errorf("Unexpected path: %q", gotPath)
	}
	if gotQuery["key"] != "test-key" || gotQuery["token"] != "test-token" {
		t.Errorf("Expected key/token query auth, got %v", gotQuery)
	}
	if gotQuery["fields"] != "name,url,id" {
		t.Errorf("Unexpected fields param: %q", gotQuery["fields"])
	}
	if len(boards) != 1 {
		t.Fatalf("Expected one board, got %d", len(boards))
	}
}

func TestTrelloGetLists_ExcludesCards(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"cards":  r.URL.Query().Get("cards"),
			"fields": r.URL.Query().Get("fields"),
		}
		io.WriteString(w, `[{"id":"l1","name":"To Do","idBoard":"b1","pos":1}]`)
	}))
	defer server.Close()

	client := newTestTrelloClient(server.URL)

	lists, err := client.GetLists(context.Background(), "b1")
	if err != nil {
		t.Fatalf("GetLists failed: %v", err)
	}

	if gotQuery["cards"] != "none" {
		t.Errorf("Expected cards=none, got %q", gotQuery["cards"])
	}
	if gotQuery["fields"] != "name,id,idBoard,pos" {
		t.Errorf("Unexpected fields: %q", gotQuery["fields"])
	}
	if len(lists) != 1 {
		t.Fatalf("Expected one list, got %d", len(lists))
	}
}

func TestTrelloMoveListToBoard(t *testing.T) {
	var gotMethod, gotPath, gotValue string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotValue = r.URL.Query().Get("value")
		io.WriteString(w, `{"id":"l1","name":"To Do","idBoard":"b2"}`)
	}))
	defer server.Close()

	client := newTestTrelloClient(server.URL)

	list, err := client.MoveListToBoard(context.Background(), "l1", "b2")
	if err != nil {
		t.Fatalf("MoveListToBoard failed: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("Expected PUT, got %s", gotMethod)
	}
	if gotPath != "/lists/l1/idBoard" {
		t.Errorf("Unexpected path: %q", gotPath)
	}
	if gotValue != "b2" {
		t.Errorf("Expected value=b2, got %q", gotValue)
	}
	if list["idBoard"] != "b2" {
		t.Errorf("Expected updated board, got %v", list["idBoard"])
	}
}

func TestTrelloMoveCardToList(t *testing.T) {
	var gotPath, gotValue string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotValue = r.URL.Query().Get("value")
		io.WriteString(w, `{"id":"c1","idList":"l2"}`)
	}))
	defer server.Close()

	client := newTestTrelloClient(server.URL)

	card, err := client.MoveCardToList(context.Background(), "c1", "l2")
	if err != nil {
		t.Fatalf("MoveCardToList failed: %v", err)
	}

	if gotPath != "/cards/c1/idList" {
		t.Errorf("Unexpected path: %q", gotPath)
	}
	if gotValue != "l2" {
		t.Errorf("Expected value=l2, got %q", gotValue)
	}
	if card["idList"] != "l2" {
		t.Errorf("Expected updated list, got %v", card["idList"])
	}
}

func TestTrelloGetCardComments_Filter(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"filter": r.URL.Query().Get("filter"),
			"fields": r.URL.Query().Get("fields"),
		}
		io.WriteString(w, `[{"id":"a1","type":"commentCard","data":{"text":"ship it"}}]`)
	}))
	defer server.Close()

	client := newTestTrelloClient(server.URL)

	actions, err := client.GetCardComments(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCardComments failed: %v", err)
	}

	if gotQuery["filter"] != "commentCard" {
		t.Errorf("Expected commentCard filter, got %q", gotQuery["filter"])
	}
	if gotQuery["fields"] != "type,date,data,memberCreator" {
		t.Errorf("Unexpected fields: %q", gotQuery["fields"])
	}
	if len(actions) != 1 {
		t.Fatalf("Expected one action, got %d", len(actions))
	}
}

func TestTrelloGetCard_FieldsParam(t *testing.T) {
	var gotFields string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFields = r.URL.Query().Get("fields")
		io.WriteString(w, `{"id":"c1","name":"Fix login","desc":"details","labels":[{"name":"bug"}]}`)
	}))
	defer server.Close()

	client := newTestTrelloClient(server.URL)

	card, err := client.GetCard(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}

	if gotFields != "name,desc,idBoard,idList,url,shortUrl,due,labels,idMembers" {
		t.Errorf("Unexpected fields: %q", gotFields)
	}
	if card["name"] != "Fix login" {
		t.Errorf("Expected card name, got %v", card["name"])
	}
}
