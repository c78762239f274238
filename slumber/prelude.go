package slumber

// preludeSource is evaluated into the global scope by NewRuntime.
const preludeSource = `
def len(xs)
  return xs.__len()

def str(x)
  return x.__str()

def repr(x)
  return x.__repr()

def* map(f, xs)
  for x in xs
    yield f(x)

def* range(start, /end)
  if end == nil
    end = start
    start = 0
  i = start
  while i < end
    yield i
    i = i + 1

def assertEqual(actual, expected)
  assert(actual == expected, actual)
`
