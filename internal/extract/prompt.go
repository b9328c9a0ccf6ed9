package extract

import "strings"

// extractionPrompt is the fixed instruction for turning one entry's HTML
// content into structured records. Two recognized shapes: individual-ticker
// news block, multi-ticker market summary block. Output must be strict JSON.
const extractionPrompt = `Expert Web Scraper.

HTML Content: {content}

Perform different types of text extraction:

1) Extract individual news text AS IT IS from given HTML.

HTML Content format:
INDIVIDUAL NEWS SUMMARY
Start date for the articles: <start_date>; End date for the articles: <end_date>
NEWS SUMMARY for (<ticker>, <count>), which changed on <growth>% last trading day:
<text>

You need to extract all fields in <> :
- Date ranges
- mentioned ticker
- news count
- growth percentage
- news for the ticker

Format:
{
  "content": [
    {
      "type": "individual",
      "start_date": <start date for articles>,
      "end_date": <end date for articles>,
      "ticker": <ticker symbol from news>,
      "count": <articles count from news>,
      "growth": <growth %>,
      "text": <news for the ticker from html>
    },
    // repeat for all news
  ]
}

2) Extract market news 1 day or 1 week text AS IT IS from given HTML:
HTML Content format:
[<model_name> <period> summary] MARKET NEWS SUMMARY ('multiple_tickers', <news_count> ) -- i.e. <news_count> news summary for the last 24 hours before <end_date> UTC time:

Extract text AS IT IS from given HTML:
- <model_name>
- <period>
- <news_count>
- <news_summary>

Output JSON format:
{
  "content": [
    {
      "type": "market_"+<period>,
      "end_date": <end_date>,
      "start_date": <24 hours before end_date>,
      "ticker": "multiple_tickers",
      "count": <news_count>,
      "model": <model_name>,
      "text": <news_summary>
    }
  ]
}

Constraints:
Return JSON only.`

// buildPrompt injects the entry content into the instruction.
// 본문에 % 기호가 흔해서 Sprintf 대신 치환을 쓴다.
func buildPrompt(content string) string {
	return strings.ReplaceAll(extractionPrompt, "{content}", content)
}
