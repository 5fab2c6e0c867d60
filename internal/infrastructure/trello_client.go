package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"atlassian-suite-mcp/internal/domain"
)

// TrelloClient talks to the Trello REST API. Unlike the Atlassian Server
// clients it authenticates with key/token query parameters on every call,
// and most collection endpoints return top-level JSON arrays.
type TrelloClient struct {
	rest     *Client
	memberID string
}

// NewTrelloClient creates a Trello API client from a credential bundle.
func NewTrelloClient(config *domain.TrelloConfig, httpClient *http.Client) *TrelloClient {
	auth := QueryAuth{Key: config.APIKey, Token: config.APIToken}
	return &TrelloClient{
		rest:     NewClient(config.BaseURL, auth, httpClient),
		memberID: config.MemberID,
	}
}

// BaseURL returns the configured Trello API root.
func (c *TrelloClient) BaseURL() string {
	return c.rest.BaseURL()
}

// GetBoards lists all boards for the configured member.
func (c *TrelloClient) GetBoards(ctx context.Context) ([]interface{}, error) {
	query := url.Values{}
	query.Set("fields", "name,url,id")

	var boards []interface{}
	path := fmt.Sprintf("/members/%s/boards", url.PathEscape(c.memberID))
	if err := c.rest.DoJSON(ctx, http.MethodGet, path, query, nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// GetLists lists the lists on a board, without their cards.
func (c *TrelloClient) GetLists(ctx context.Context, boardID string) ([]interface{}, error) {
	query := url.Values{}
	query.Set("cards", "none")
	query.Set("fields", "name,id,idBoard,pos")

	var lists []interface{}
	path := fmt.Sprintf("/boards/%s/lists", url.PathEscape(boardID))
	if err := c.rest.DoJSON(ctx, http.MethodGet, path, query, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// MoveListToBoard moves a list to another board via PUT /lists/{id}/idBoard.
func (c *TrelloClient) MoveListToBoard(ctx context.Context, listID, targetBoardID string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("value", targetBoardID)

	var list map[string]interface{}
	path := fmt.Sprintf("/lists/%s/idBoard", url.PathEscape(listID))
	if err := c.rest.DoJSON(ctx, http.MethodPut, path, query, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetCardsOnList lists all cards on a list.
func (c *TrelloClient) GetCardsOnList(ctx context.Context, listID string) ([]interface{}, error) {
	query := url.Values{}
	query.Set("fields", "name,id,idBoard,idList,url,shortUrl")

	var cards []interface{}
	path := fmt.Sprintf("/lists/%s/cards", url.PathEscape(listID))
	if err := c.rest.DoJSON(ctx, http.MethodGet, path, query, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard fetches one card with the fields useful for Jira migrations.
func (c *TrelloClient) GetCard(ctx context.Context, cardID string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("fields", "name,desc,idBoard,idList,url,shortUrl,due,labels,idMembers")

	var card map[string]interface{}
	path := fmt.Sprintf("/cards/%s", url.PathEscape(cardID))
	if err := c.rest.DoJSON(ctx, http.MethodGet, path, query, nil, &card); err != nil {
		return nil, err
	}
	return card, nil
}

// MoveCardToList moves a card to another list via PUT /cards/{id}/idList.
func (c *TrelloClient) MoveCardToList(ctx context.Context, cardID, targetListID string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("value", targetListID)

	var card map[string]interface{}
	path := fmt.Sprintf("/cards/%s/idList", url.PathEscape(cardID))
	if err := c.rest.DoJSON(ctx, http.MethodPut, path, query, nil, &card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetCardAttachments lists the attachments on a card.
func (c *TrelloClient) GetCardAttachments(ctx context.Context, cardID string) ([]interface{}, error) {
	query := url.Values{}
	query.Set("fields", "id,name,url,bytes,date,edgeColor")

	var attachments []interface{}
	path := fmt.Sprintf("/cards/%s/attachments", url.PathEscape(cardID))
	if err := c.rest.DoJSON(ctx, http.MethodGet, path, query, nil, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// GetCardComments lists comment actions for a card
// (actions filtered to commentCard).
func (c *TrelloClient) GetCardComments(ctx context.Context, cardID string) ([]interface{}, error) {
	query := url.Values{}
	query.Set("filter", "commentCard")
	query.Set("fields", "type,date,data,memberCreator")

	var actions []interface{}
	path := fmt.Sprintf("/cards/%s/actions", url.PathEscape(cardID))
	if err := c.rest.DoJSON(ctx, http.MethodGet, path, query, nil, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
