package vision

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const visionPrompt = `You are a trading signal analyzer. Carefully examine this image and determine:

1. INTENT: Is this a TRADING SIGNAL (future trade setup) or a TRADE RESULT (past trade outcome)?
   - Trading signals have: entry zones, pending orders, future setup indicators, "wait for", "looking for"
   - Trade results have: profit/loss amounts, "closed", "hit TP", equity changes, completed trades

2. ONLY extract fields if this is a TRADING SIGNAL (pre-trade setup). Ignore trade results.

3. If this IS a trading signal, extract:
   - Action: BUY/SELL/LONG/SHORT (look at text, arrows, or chart patterns)
   - Instrument: The trading pair/symbol (EURUSD, XAUUSD, BTCUSDT, etc.)
   - Entry Price: The exact entry price or zone
   - Stop Loss (SL): The stop loss level (often a red line or "SL:")
   - Take Profit (TP): All target levels (TP1, TP2, TP3, or marked zones)

4. Respond using this exact format:

SIGNAL_TYPE: [TRADE_SIGNAL or TRADE_RESULT]
ACTION: [BUY/SELL/LONG/SHORT or N/A]
INSTRUMENT: [exact symbol like EURUSD, XAUUSD, etc. or N/A]
ENTRY: [exact price number or N/A]
SL: [exact price number or N/A]
TP: [comma-separated prices like 1.2000, 1.2100 or N/A]

If SIGNAL_TYPE is TRADE_RESULT, set every other field to N/A.
Be precise with numbers. Extract exact prices from the image.`

// OpenAIVision asks a vision-capable chat model to classify a chart image and
// emit the labeled field block the signal grammar understands.
type OpenAIVision struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIVision(apiKey, model string) *OpenAIVision {
	return &OpenAIVision{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}
}

func (p *OpenAIVision) ClassifyAndExtract(ctx context.Context, image []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     p.model,
		MaxTokens: openai.Int(800),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(visionPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
