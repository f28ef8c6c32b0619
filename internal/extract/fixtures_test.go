// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// recordThreeAuthors has a shared affiliation stated only for the first
// author and an e-mail address at the end of it.
const recordThreeAuthors = `<PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">31000001</PMID>
      <Article PubModel="Print-Electronic">
        <Journal>
          <ISSN IssnType="Electronic">1476-4687</ISSN>
          <JournalIssue CitedMedium="Internet">
            <Volume>568</Volume>
            <PubDate>
              <Year>2019</Year>
              <Month>Apr</Month>
              <Day>18</Day>
            </PubDate>
          </JournalIssue>
          <Title>Nature</Title>
          <ISOAbbreviation>Nature</ISOAbbreviation>
        </Journal>
        <ArticleTitle>Cortical   circuits for
          <i>in vivo</i> memory.</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">First part.</AbstractText>
          <AbstractText Label="RESULTS">Second &amp; final part.</AbstractText>
        </Abstract>
        <AuthorList CompleteYN="Y">
          <Author ValidYN="Y">
            <LastName>Smith</LastName>
            <ForeName>John</ForeName>
            <Initials>J</Initials>
            <AffiliationInfo>
              <Affiliation>Dept of Neuroscience, MIT, Cambridge, MA, USA. Electronic address: jsmith@mit.edu.</Affiliation>
            </AffiliationInfo>
          </Author>
          <Author ValidYN="Y">
            <LastName>Doe</LastName>
            <ForeName>Jane</ForeName>
            <Initials>J</Initials>
          </Author>
          <Author ValidYN="Y">
            <LastName>Lee</LastName>
            <ForeName>Kim</ForeName>
            <Initials>K</Initials>
          </Author>
        </AuthorList>
        <ELocationID EIdType="pii" ValidYN="Y">S0000-0000(19)00001-1</ELocationID>
      </Article>
      <MedlineJournalInfo>
        <Country>England</Country>
        <MedlineTA>Nature</MedlineTA>
      </MedlineJournalInfo>
      <CommentsCorrectionsList>
        <CommentsCorrections RefType="Cites">
          <RefSource>Cell. 2010;1:1</RefSource>
          <PMID Version="1">20000000</PMID>
        </CommentsCorrections>
      </CommentsCorrectionsList>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">31000001</ArticleId>
        <ArticleId IdType="doi">10.1038/s41586-019-1111-1</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>`

// recordMedlineDate has a MedlineDate, a DOI only in ELocationID, inline
// markup in the journal title, and no abstract.
const recordMedlineDate = `<PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">31000002</PMID>
      <Article PubModel="Print">
        <Journal>
          <JournalIssue CitedMedium="Print">
            <PubDate>
              <MedlineDate>2018 Nov-Dec</MedlineDate>
            </PubDate>
          </JournalIssue>
          <Title>Acta <i>Neurologica</i> Scandinavica</Title>
          <ISOAbbreviation>Acta Neurol Scand</ISOAbbreviation>
        </Journal>
        <ArticleTitle>Seasonal variation in migraine.</ArticleTitle>
        <ELocationID EIdType="doi" ValidYN="Y">10.1111/ane.13000</ELocationID>
        <AuthorList CompleteYN="Y">
          <Author ValidYN="Y">
            <LastName>Berg</LastName>
            <ForeName>Ola</ForeName>
          </Author>
          <Author ValidYN="Y">
            <LastName>Nilsson</LastName>
            <ForeName>Eva</ForeName>
            <AffiliationInfo>
              <Affiliation>Lund University, Lund, Sweden.</Affiliation>
            </AffiliationInfo>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">31000002</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>`

// recordNoAuthors has no AuthorList and only an electronic article date.
const recordNoAuthors = `<PubmedArticle>
    <MedlineCitation Status="PubMed-not-MEDLINE" Owner="NLM">
      <PMID Version="1">31000003</PMID>
      <Article PubModel="Electronic">
        <Journal>
          <JournalIssue CitedMedium="Internet">
            <PubDate>
              <Year>2020</Year>
            </PubDate>
          </JournalIssue>
          <Title>Reactions Weekly</Title>
          <ISOAbbreviation>React Wkly</ISOAbbreviation>
        </Journal>
        <ArticleTitle>Unattributed case report.</ArticleTitle>
        <Abstract>
          <AbstractText>Short.</AbstractText>
        </Abstract>
        <ArticleDate DateType="Electronic">
          <Year>2020</Year>
          <Month>03</Month>
          <Day>02</Day>
        </ArticleDate>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">31000003</ArticleId>
        <ArticleId IdType="doi">10.1007/s40278-020-00001-1</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>`

// recordBook is a GeneReviews chapter. Its Book element lists editors,
// who are not authors of the chapter.
const recordBook = `<PubmedBookArticle>
    <BookDocument>
      <PMID Version="1">20301295</PMID>
      <ArticleIdList>
        <ArticleId IdType="bookaccession">NBK1116</ArticleId>
      </ArticleIdList>
      <Book>
        <Publisher>
          <PublisherName>University of Washington, Seattle</PublisherName>
          <PublisherLocation>Seattle (WA)</PublisherLocation>
        </Publisher>
        <BookTitle book="gene">GeneReviews</BookTitle>
        <PubDate>
          <Year>1993</Year>
        </PubDate>
        <AuthorList Type="editors">
          <Author>
            <LastName>Adam</LastName>
            <ForeName>Margaret P</ForeName>
          </Author>
        </AuthorList>
      </Book>
      <ArticleTitle book="gene" part="alpha-thal">Alpha-Thalassemia</ArticleTitle>
      <Abstract>
        <AbstractText Label="CLINICAL CHARACTERISTICS">Alpha-thalassemia has two clinical forms.</AbstractText>
      </Abstract>
      <AuthorList Type="authors">
        <Author>
          <LastName>Tamary</LastName>
          <ForeName>Hanna</ForeName>
          <AffiliationInfo>
            <Affiliation>Schneider Children's Medical Center, Petah Tikva, Israel.</Affiliation>
          </AffiliationInfo>
        </Author>
      </AuthorList>
    </BookDocument>
    <PubmedBookData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">20301295</ArticleId>
      </ArticleIdList>
    </PubmedBookData>
  </PubmedBookArticle>`

// datedRecord returns a record whose JournalIssue PubDate holds pubDate
// and whose Article carries an electronic ArticleDate of 2017-06-09.
func datedRecord(pubDate string) string {
	return `<PubmedArticle><MedlineCitation><PMID Version="1">31000004</PMID><Article>
  <Journal><JournalIssue><PubDate>` + pubDate + `</PubDate></JournalIssue><Title>J</Title></Journal>
  <ArticleTitle>Dated.</ArticleTitle>
  <ArticleDate DateType="Electronic"><Year>2017</Year><Month>06</Month><Day>09</Day></ArticleDate>
</Article></MedlineCitation></PubmedArticle>`
}

// articleSet wraps records the way efetch does.
func articleSet(records ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" ?>` + "\n")
	b.WriteString(`<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2025//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_250101.dtd">` + "\n")
	b.WriteString("<PubmedArticleSet>\n")
	for _, r := range records {
		b.WriteString("  ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("</PubmedArticleSet>\n")
	return b.String()
}
